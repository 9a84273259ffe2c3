package classroom

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/document"
	"github.com/darasahq/darasa/storage/docstore"
)

var (
	// errors
	AssignmentNotFoundErr = errors.New("assignment not found")
	SubmissionNotFoundErr = errors.New("submission not found")
	StudentNotFoundErr    = errors.New("student not found")
)

type (
	Service struct {
		store    docstore.Store
		log      core.Logger
		emulated bool
	}
)

func NewService(store docstore.Store, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		store:    store,
		log:      logger,
		emulated: conf.Emulated,
	}
}

// CreateAssignment validates and persists a new assignment document,
// returning its generated id.
func (s *Service) CreateAssignment(ctx context.Context, na NewAssignment) (string, error) {
	if err := na.Validate(); err != nil {
		return "", err
	}
	rec := document.ForWrite(na.record(s.emulated), s.log)
	id, err := s.store.Add(ctx, CollectionAssignments, rec)
	if err != nil {
		return "", errors.Wrap(err, "creating assignment")
	}
	return id, nil
}

// Assignment fetches and normalizes an assignment document.
func (s *Service) Assignment(ctx context.Context, id string) (document.Record, error) {
	return s.get(ctx, CollectionAssignments, id, AssignmentSchema, AssignmentNotFoundErr)
}

// CreateSubmission validates and persists a new submission document,
// returning its generated id. The referenced assignment must exist.
func (s *Service) CreateSubmission(ctx context.Context, ns NewSubmission) (string, error) {
	if err := ns.Validate(); err != nil {
		return "", err
	}
	if _, err := s.Assignment(ctx, ns.AssignmentID); err != nil {
		if errors.Cause(err) == AssignmentNotFoundErr {
			return "", core.NewValidationError(err, core.FieldError{Field: "assignment_id", Error: AssignmentNotFoundErr.Error()})
		}
		return "", err
	}
	rec := document.ForWrite(ns.record(s.emulated), s.log)
	id, err := s.store.Add(ctx, CollectionSubmissions, rec)
	if err != nil {
		return "", errors.Wrap(err, "creating submission")
	}
	return id, nil
}

// Submission fetches and normalizes a submission document.
func (s *Service) Submission(ctx context.Context, id string) (document.Record, error) {
	return s.get(ctx, CollectionSubmissions, id, SubmissionSchema, SubmissionNotFoundErr)
}

// Student fetches and normalizes a student document.
func (s *Service) Student(ctx context.Context, id string) (document.Record, error) {
	return s.get(ctx, CollectionStudents, id, StudentSchema, StudentNotFoundErr)
}

// GradeSubmission records a grade on a submission. The grade may not exceed
// the assignment's max points.
func (s *Service) GradeSubmission(ctx context.Context, id string, gs GradeSubmission) error {
	if err := gs.Validate(); err != nil {
		return err
	}

	sub, err := s.Submission(ctx, id)
	if err != nil {
		return err
	}
	assignment, err := s.Assignment(ctx, sub["assignmentId"].(string))
	if err != nil {
		return err
	}
	if maxPoints := toFloat(assignment["maxPoints"]); gs.Grade > maxPoints {
		return core.NewValidationError(nil, core.FieldError{Field: "grade", Error: "grade exceeds the assignment's max points"})
	}

	sub["grade"] = gs.Grade
	sub["gradedAt"] = document.Now(s.emulated)
	sub["updatedAt"] = document.Now(s.emulated)
	sub["status"] = StatusGraded
	if gs.Status != "" {
		sub["status"] = gs.Status
	}
	if gs.Feedback != "" {
		sub["feedback"] = gs.Feedback
	} else {
		sub["feedback"] = document.Undefined // left unset, stripped before write
	}

	// the id lives in the store key, not in the document body
	delete(sub, "id")

	rec := document.ForWrite(sub, s.log)
	if err := s.store.Set(ctx, CollectionSubmissions, id, rec); err != nil {
		return errors.Wrap(err, "saving grade")
	}
	return nil
}

// StudentDashboard returns the student's submissions, normalized and
// sanitized for the response boundary. A submission document too broken to
// normalize degrades gracefully: it is logged and skipped rather than failing
// the whole dashboard.
func (s *Service) StudentDashboard(ctx context.Context, studentID string) ([]document.Record, error) {
	if _, err := s.Student(ctx, studentID); err != nil {
		return nil, err
	}

	all, err := s.store.QueryAll(ctx, CollectionSubmissions)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	subs := make([]document.Record, 0, len(ids))
	for _, id := range ids {
		raw := all[id]
		if raw["studentId"] != studentID {
			continue
		}
		raw = document.ProcessTimestamps(raw, SubmissionSchema.TimestampFields()...)
		rec := document.NormalizeOrFallback(raw, SubmissionSchema, id, nil)
		if rec == nil {
			s.log.Warn("classroom: skipping invalid submission document", map[string]interface{}{"id": id})
			continue
		}
		subs = append(subs, document.SanitizeForResponse(rec))
	}
	return subs, nil
}

func (s *Service) get(ctx context.Context, collection, id string, schema *document.Schema, notFound error) (document.Record, error) {
	raw, err := s.store.Get(ctx, collection, id)
	if err != nil {
		if err == docstore.NotFoundErr {
			return nil, notFound
		}
		return nil, errors.Wrapf(err, "fetching %s", schema.Name)
	}

	raw = document.ProcessTimestamps(raw, schema.TimestampFields()...)
	rec, err := document.Normalize(raw, schema, id)
	if err != nil {
		if vErr, ok := err.(*document.ValidationError); ok {
			s.log.Error("classroom: invalid document", vErr.Diagnostic())
		}
		return nil, err
	}
	return rec, nil
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float64:
		return val
	}
	return 0
}
