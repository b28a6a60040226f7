package dto

import "github.com/google/uuid"

type CreateCourseRequest struct {
	Code       string `json:"code"`
	Title      string `json:"title"`
	Units      int    `json:"units"`
	Department string `json:"department"`
}

type CourseStat struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Title        string    `json:"title"`
	StudentCount int64     `json:"studentCount"`
}
