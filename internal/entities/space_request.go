package entities

import (
	"bytes"
	"encoding/json"
)

type CreateSpaceRequest struct {
	Name         string   `json:"name" validate:"required,max=255,singleline"`
	Address      string   `json:"address" validate:"required,max=255,singleline"`
	City         string   `json:"city" validate:"required,max=255,singleline"`
	Country      string   `json:"country" validate:"required,max=255,singleline"`
	Description  *string  `json:"description"`
	PricePerHour *float64 `json:"price_per_hour" validate:"required,gte=0,lte=99999999.99"`
}

// UpdateSpaceRequest holds the fields present in the body; nil means untouched.
type UpdateSpaceRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=255,singleline"`
	Address      *string          `json:"address" validate:"omitempty,min=1,max=255,singleline"`
	City         *string          `json:"city" validate:"omitempty,min=1,max=255,singleline"`
	Country      *string          `json:"country" validate:"omitempty,min=1,max=255,singleline"`
	Description  Nullable[string] `json:"description"`
	PricePerHour *float64         `json:"price_per_hour" validate:"omitempty,gte=0,lte=99999999.99"`
}

// Nullable tells an absent key apart from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}
