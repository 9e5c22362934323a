package server

import (
	"math"

	"attendance-backend/services/attendance"
)

type fetchRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type subjectResponse struct {
	Code       string            `json:"code"`
	Attended   int               `json:"attended"`
	Total      int               `json:"total"`
	Percentage float64           `json:"percentage"`
	Status     attendance.Status `json:"status"`
	// Margin is the number of classes that can still be missed, negative
	// when that many must be attended to reach the threshold.
	Margin int `json:"margin"`
}

type fetchResponse struct {
	Message             string            `json:"message"`
	StudentName         string            `json:"student_name"`
	Data                []subjectResponse `json:"data"`
	AggregatePercentage float64           `json:"aggregate_percentage"`
	AggregateStatus     attendance.Status `json:"aggregate_status"`
	AggregateMargin     int               `json:"aggregate_margin"`
	TotalAttended       int               `json:"total_attended"`
	TotalConducted      int               `json:"total_conducted"`
	DebugText           string            `json:"debug_text,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func newFetchResponse(report attendance.Report, threshold float64) fetchResponse {
	data := make([]subjectResponse, len(report.Records))
	for i, record := range report.Records {
		data[i] = subjectResponse{
			Code:       record.Subject,
			Attended:   record.Attended,
			Total:      record.Conducted,
			Percentage: record.Percentage,
			Status:     attendance.StatusOf(record.Percentage),
			Margin:     attendance.Margin(record.Attended, record.Conducted, threshold),
		}
	}
	aggregate := report.Aggregate()
	return fetchResponse{
		Message:             "Success",
		StudentName:         report.StudentName,
		Data:                data,
		AggregatePercentage: round2(aggregate),
		AggregateStatus:     attendance.StatusOf(aggregate),
		AggregateMargin:     attendance.Margin(report.TotalAttended(), report.TotalConducted(), threshold),
		TotalAttended:       report.TotalAttended(),
		TotalConducted:      report.TotalConducted(),
		DebugText:           report.DebugText,
	}
}
