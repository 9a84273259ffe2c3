package classroom

import (
	"time"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/document"
)

// Collections
const (
	CollectionAssignments = "assignments"
	CollectionSubmissions = "submissions"
	CollectionStudents    = "students"
)

// Submission statuses
const (
	StatusAssigned  = "assigned"
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
	StatusReturned  = "returned"
)

var AllStatuses = []string{StatusAssigned, StatusSubmitted, StatusGraded, StatusReturned}

// Document schemas. The store omits absent fields rather than persisting
// null/undefined, so every read runs through document.Normalize against these
// tables before anything downstream trusts the record shape.
var (
	AssignmentSchema = &document.Schema{
		Name: "assignment",
		Fields: []document.Field{
			{Name: "id", Kind: document.KindString},
			{Name: "title", Kind: document.KindString},
			{Name: "description", Kind: document.KindString, Optional: true},
			{Name: "courseId", Kind: document.KindString},
			{Name: "maxPoints", Kind: document.KindNumber, Default: func() interface{} { return 100 }},
			{Name: "published", Kind: document.KindBool},
			{Name: "tags", Kind: document.KindArray},
			{Name: "rubric", Kind: document.KindObject, Optional: true},
			{Name: "dueDate", Kind: document.KindTimestamp, Optional: true},
			{Name: "createdAt", Kind: document.KindTimestamp, Optional: true},
			{Name: "updatedAt", Kind: document.KindTimestamp, Optional: true},
		},
	}

	SubmissionSchema = &document.Schema{
		Name: "submission",
		Fields: []document.Field{
			{Name: "id", Kind: document.KindString},
			{Name: "assignmentId", Kind: document.KindString},
			{Name: "studentId", Kind: document.KindString},
			{Name: "status", Kind: document.KindString, Default: func() interface{} { return StatusAssigned }},
			{Name: "grade", Kind: document.KindNumber, Optional: true},
			{Name: "feedback", Kind: document.KindString, Optional: true},
			{Name: "attachments", Kind: document.KindArray},
			{Name: "submittedAt", Kind: document.KindTimestamp, Optional: true},
			{Name: "gradedAt", Kind: document.KindTimestamp, Optional: true},
			{Name: "createdAt", Kind: document.KindTimestamp, Optional: true},
			{Name: "updatedAt", Kind: document.KindTimestamp, Optional: true},
		},
	}

	StudentSchema = &document.Schema{
		Name: "student",
		Fields: []document.Field{
			{Name: "id", Kind: document.KindString},
			{Name: "name", Kind: document.KindString},
			{Name: "courseIds", Kind: document.KindArray},
			{Name: "contact", Kind: document.KindObject, Elem: &document.Schema{
				Name: "contact",
				Fields: []document.Field{
					{Name: "email", Kind: document.KindString},
					{Name: "guardianEmail", Kind: document.KindString, Optional: true},
				},
			}},
		},
	}
)

// NewAssignment contains information needed to create a new assignment document.
type NewAssignment struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	CourseID    string     `json:"course_id" validate:"required"`
	MaxPoints   float64    `json:"max_points" validate:"gte=0"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"due_date"`
}

func (na *NewAssignment) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.CourseID = core.CleanString(na.CourseID)

	if err := core.Validate.Struct(na); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

func (na NewAssignment) record(emulated bool) document.Record {
	tags := make([]interface{}, len(na.Tags))
	for i, tag := range na.Tags {
		tags[i] = tag
	}
	rec := document.Record{
		"title":     na.Title,
		"courseId":  na.CourseID,
		"maxPoints": na.MaxPoints,
		"published": false,
		"tags":      tags,
		"createdAt": document.Now(emulated),
		"updatedAt": document.Now(emulated),
	}
	if na.Description != "" {
		rec["description"] = na.Description
	}
	if na.DueDate != nil {
		rec["dueDate"] = *na.DueDate
	}
	return rec
}

// NewSubmission contains information needed to create a submission document.
type NewSubmission struct {
	AssignmentID string   `json:"assignment_id" validate:"required"`
	StudentID    string   `json:"student_id" validate:"required"`
	Attachments  []string `json:"attachments"`
}

func (ns *NewSubmission) Validate() error {
	ns.AssignmentID = core.CleanString(ns.AssignmentID)
	ns.StudentID = core.CleanString(ns.StudentID)

	if err := core.Validate.Struct(ns); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

func (ns NewSubmission) record(emulated bool) document.Record {
	attachments := make([]interface{}, len(ns.Attachments))
	for i, att := range ns.Attachments {
		attachments[i] = att
	}
	return document.Record{
		"assignmentId": ns.AssignmentID,
		"studentId":    ns.StudentID,
		"status":       StatusAssigned,
		"attachments":  attachments,
		"createdAt":    document.Now(emulated),
		"updatedAt":    document.Now(emulated),
	}
}

// GradeSubmission defines what a grader may set on a submission.
type GradeSubmission struct {
	Grade    float64 `json:"grade" validate:"gte=0"`
	Feedback string  `json:"feedback"`
	Status   string  `json:"status" validate:"omitempty,submission_status"`
}

func (gs *GradeSubmission) Validate() error {
	gs.Status = core.CleanString(gs.Status, true)

	if err := core.Validate.Struct(gs); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}
