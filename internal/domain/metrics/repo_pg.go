package metrics

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const metricsCols = `id, patient_id, visit_date, bmi, systolic_bp, diastolic_bp,
	hemoglobin, hdl_cholesterol, pregnancies_count,
	sedentary_lifestyle, family_history_diabetes, prediabetes_history,
	pcos_history, previous_gdm, previous_macrosomia,
	notes, created_at, updated_at`

func scanMetrics(row pgx.Row) (*Metrics, error) {
	var m Metrics
	err := row.Scan(&m.ID, &m.PatientID, &m.VisitDate, &m.BMI, &m.SystolicBP, &m.DiastolicBP,
		&m.Hemoglobin, &m.HDLCholesterol, &m.PregnanciesCount,
		&m.SedentaryLifestyle, &m.FamilyHistoryDiabetes, &m.PrediabetesHistory,
		&m.PCOSHistory, &m.PreviousGDM, &m.PreviousMacrosomia,
		&m.Notes, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Metrics) error {
	m.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clinical_metrics (id, patient_id, visit_date, bmi, systolic_bp, diastolic_bp,
			hemoglobin, hdl_cholesterol, pregnancies_count,
			sedentary_lifestyle, family_history_diabetes, prediabetes_history,
			pcos_history, previous_gdm, previous_macrosomia, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		m.ID, m.PatientID, m.VisitDate, m.BMI, m.SystolicBP, m.DiastolicBP,
		m.Hemoglobin, m.HDLCholesterol, m.PregnanciesCount,
		m.SedentaryLifestyle, m.FamilyHistoryDiabetes, m.PrediabetesHistory,
		m.PCOSHistory, m.PreviousGDM, m.PreviousMacrosomia, m.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Metrics, error) {
	return scanMetrics(r.pool.QueryRow(ctx, `SELECT `+metricsCols+` FROM clinical_metrics WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, m *Metrics) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE clinical_metrics SET visit_date=$2, bmi=$3, systolic_bp=$4, diastolic_bp=$5,
			hemoglobin=$6, hdl_cholesterol=$7, pregnancies_count=$8,
			sedentary_lifestyle=$9, family_history_diabetes=$10, prediabetes_history=$11,
			pcos_history=$12, previous_gdm=$13, previous_macrosomia=$14,
			notes=$15, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.VisitDate, m.BMI, m.SystolicBP, m.DiastolicBP,
		m.Hemoglobin, m.HDLCholesterol, m.PregnanciesCount,
		m.SedentaryLifestyle, m.FamilyHistoryDiabetes, m.PrediabetesHistory,
		m.PCOSHistory, m.PreviousGDM, m.PreviousMacrosomia, m.Notes)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Metrics, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clinical_metrics WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+metricsCols+` FROM clinical_metrics WHERE patient_id = $1 ORDER BY visit_date DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Metrics
	for rows.Next() {
		m, err := scanMetrics(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *repoPG) LatestForPatient(ctx context.Context, patientID uuid.UUID) (*Metrics, error) {
	return scanMetrics(r.pool.QueryRow(ctx,
		`SELECT `+metricsCols+` FROM clinical_metrics WHERE patient_id = $1 ORDER BY visit_date DESC, created_at DESC LIMIT 1`,
		patientID))
}
