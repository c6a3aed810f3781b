package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/hakwon-ops/roster-api/internal/kv"
	"github.com/hakwon-ops/roster-api/internal/models"
)

const studentsEndpoint = "students"

// StudentRepository reads the student roster source. Student CRUD belongs to
// an external collaborator; this engine never writes students.
type StudentRepository struct {
	kv      *kv.Client
	logger  *zap.Logger
	metrics StoreMetrics

	snapshot *snapshot[[]models.Student]
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(client *kv.Client, logger *zap.Logger, metrics StoreMetrics) *StudentRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentRepository{
		kv:       client,
		logger:   logger,
		metrics:  orNilMetrics(metrics),
		snapshot: newSnapshot[[]models.Student](nil),
	}
}

// Refresh reloads the student list. On failure the previous snapshot is kept
// and resolution proceeds on stale data.
func (r *StudentRepository) Refresh(ctx context.Context) error {
	var students []models.Student
	if err := r.kv.Get(ctx, studentsEndpoint, &students); err != nil {
		r.logger.Warn("students read failed, keeping cached roster", zap.Error(err))
		r.metrics.StoreReadFallback(studentsEndpoint)
		return err
	}
	r.snapshot.set(students)
	return nil
}

// All returns the cached student list.
func (r *StudentRepository) All() []models.Student {
	students := r.snapshot.get()
	out := make([]models.Student, len(students))
	copy(out, students)
	return out
}
