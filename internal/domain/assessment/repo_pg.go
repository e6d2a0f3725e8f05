package assessment

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gdmcare/gdmcare/internal/scoring"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const assessmentCols = `id, patient_id, assessed_by, features, risk_score, risk_label,
	risk_percentage, model_version, threshold_low, threshold_high, created_at`

func scanAssessment(row pgx.Row) (*Assessment, error) {
	var a Assessment
	var featuresJSON []byte
	err := row.Scan(&a.ID, &a.PatientID, &a.AssessedBy, &featuresJSON, &a.RiskScore, &a.RiskLabel,
		&a.RiskPercentage, &a.ModelVersion, &a.ThresholdLow, &a.ThresholdHigh, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	var f scoring.Features
	if err := json.Unmarshal(featuresJSON, &f); err != nil {
		return nil, err
	}
	a.Features = f
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Assessment) error {
	a.ID = uuid.New()
	featuresJSON, err := json.Marshal(a.Features)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO risk_assessments (id, patient_id, assessed_by, features, risk_score, risk_label,
			risk_percentage, model_version, threshold_low, threshold_high)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.PatientID, a.AssessedBy, featuresJSON, a.RiskScore, a.RiskLabel,
		a.RiskPercentage, a.ModelVersion, a.ThresholdLow, a.ThresholdHigh)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	return scanAssessment(r.pool.QueryRow(ctx, `SELECT `+assessmentCols+` FROM risk_assessments WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Assessment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM risk_assessments`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+assessmentCols+` FROM risk_assessments ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectAssessments(rows, total)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Assessment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM risk_assessments WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+assessmentCols+` FROM risk_assessments WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectAssessments(rows, total)
}

func (r *repoPG) LatestForPatient(ctx context.Context, patientID uuid.UUID) (*Assessment, error) {
	return scanAssessment(r.pool.QueryRow(ctx,
		`SELECT `+assessmentCols+` FROM risk_assessments WHERE patient_id = $1 ORDER BY created_at DESC LIMIT 1`,
		patientID))
}

func (r *repoPG) CountByLabel(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT risk_label, COUNT(*) FROM risk_assessments GROUP BY risk_label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

func collectAssessments(rows pgx.Rows, total int) ([]*Assessment, int, error) {
	var items []*Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
