package entities

// Timestamps arrive as strings so a bad value is reported as a field error
// rather than a decode failure.
type CreateReservationRequest struct {
	CoworkingSpaceID int64  `json:"coworking_space_id" validate:"required,gt=0"`
	UserID           int64  `json:"user_id" validate:"required,gt=0"`
	StartTime        string `json:"start_time" validate:"required,timestamp"`
	EndTime          string `json:"end_time" validate:"required,timestamp"`
}

type UpdateReservationRequest struct {
	StartTime *string `json:"start_time" validate:"omitempty,timestamp"`
	EndTime   *string `json:"end_time" validate:"omitempty,timestamp"`
}
