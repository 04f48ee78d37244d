package utils

import "github.com/google/uuid"

// NewID tạo một ID ngẫu nhiên (UUID v4)
func NewID() string {
	return uuid.NewString()
}
