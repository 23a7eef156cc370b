package task

import (
	"time"

	"github.com/bingshan1999/TaskManager/internal/dto"
)

func fieldsFromRequest(req dto.TaskRequest) (Fields, error) {
	fields := Fields{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	}
	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			return Fields{}, err
		}
		fields.Status = status
	}
	return fields, nil
}

func toResponse(t Task) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:          t.ID,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.Title != nil {
		resp.Title = *t.Title
	}
	if t.AssignedTo != nil {
		resp.AssignedTo = *t.AssignedTo
	}
	if t.Status != "" {
		status := string(t.Status)
		resp.Status = &status
	}
	return resp
}

func toResponseList(tasks []Task) []dto.TaskResponse {
	resp := make([]dto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toResponse(t))
	}
	return resp
}
