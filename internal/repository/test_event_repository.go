package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/line-quality/internal/database"
	"github.com/yourusername/line-quality/internal/models"
)

const (
	errQueryTestEvents   = "failed to query test events: %w"
	errScanTestEvent     = "failed to scan test event: %w"
	errIterateTestEvents = "error iterating test events: %w"
)

// selectTestEventRows reads test events joined with their board reference.
// The window bounds compare lexicographically against the fixed timestamp layout,
// which orders the same way as time for well-formed values. Padding is trimmed
// with the characters of models.TimestampCutset.
const selectTestEventRows = `
	SELECT t.id, COALESCE(t.board_id, 0), t.serial_number, t.machine_id, t.operator_id,
	       t.start_timestamp, COALESCE(t.end_timestamp, ''), t.result_code,
	       COALESCE(t.test_type, ''), COALESCE(t.side, 0), COALESCE(t.position_flan, 0),
	       COALESCE(t.config_line_id, 0), COALESCE(t.process_id, 0),
	       COALESCE(b.reference_code, ''), b.unit_price
	FROM test_events t
	LEFT JOIN board_references b ON b.id = t.board_id
	WHERE BTRIM(t.start_timestamp, E' \t\r\n') >= $1
	  AND BTRIM(t.start_timestamp, E' \t\r\n') < $2`

// filterPredicates binds every allowed column to a fixed predicate on $3
var filterPredicates = map[models.FilterColumn]string{
	models.FilterResultCode:    "t.result_code = $3",
	models.FilterMachineID:     "t.machine_id = $3",
	models.FilterOperatorID:    "t.operator_id = $3",
	models.FilterBoardID:       "t.board_id = $3",
	models.FilterSerialNumber:  "t.serial_number = $3",
	models.FilterTestType:      "t.test_type = $3",
	models.FilterReferenceCode: "b.reference_code = $3",
}

// filterQuery returns the window query restricted by column
func filterQuery(column models.FilterColumn) (string, error) {
	predicate, ok := filterPredicates[column]
	if !ok {
		return "", fmt.Errorf("%w: %s", models.ErrInvalidFilterColumn, column)
	}
	return selectTestEventRows + "\n\t  AND " + predicate, nil
}

// PostgresTestEventRepository implements TestEventRepository for PostgreSQL
type PostgresTestEventRepository struct {
	db *database.DB
}

// NewPostgresTestEventRepository creates a new test event repository
func NewPostgresTestEventRepository(db *database.DB) TestEventRepository {
	return &PostgresTestEventRepository{db: db}
}

// ListInWindow retrieves the test events whose start timestamp falls inside window
func (r *PostgresTestEventRepository) ListInWindow(ctx context.Context, window models.TimeWindow) ([]models.TestEventRow, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	rows, err := r.db.GetPool().Query(ctx, selectTestEventRows+"\n\tORDER BY BTRIM(t.start_timestamp, E' \\t\\r\\n') DESC",
		models.FormatTimestamp(window.Start), models.FormatTimestamp(window.End))
	if err != nil {
		return nil, fmt.Errorf(errQueryTestEvents, err)
	}
	return collectTestEventRows(rows)
}

// ListByFilter retrieves the window's test events with value in column
func (r *PostgresTestEventRepository) ListByFilter(ctx context.Context, column models.FilterColumn, value string, window models.TimeWindow) ([]models.TestEventRow, error) {
	query, err := filterQuery(column)
	if err != nil {
		return nil, err
	}
	arg, err := column.ParseValue(value)
	if err != nil {
		return nil, err
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}

	rows, err := r.db.GetPool().Query(ctx, query,
		models.FormatTimestamp(window.Start), models.FormatTimestamp(window.End), arg)
	if err != nil {
		return nil, fmt.Errorf(errQueryTestEvents, err)
	}
	return collectTestEventRows(rows)
}

// ListOutcomes retrieves the start timestamp and result of every recorded test
func (r *PostgresTestEventRepository) ListOutcomes(ctx context.Context) ([]models.TestOutcome, error) {
	query := `
		SELECT start_timestamp, result_code
		FROM test_events
		ORDER BY start_timestamp
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf(errQueryTestEvents, err)
	}
	defer rows.Close()

	var outcomes []models.TestOutcome
	for rows.Next() {
		var outcome models.TestOutcome
		if err := rows.Scan(&outcome.StartTimestamp, &outcome.ResultCode); err != nil {
			return nil, fmt.Errorf(errScanTestEvent, err)
		}
		outcomes = append(outcomes, outcome)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(errIterateTestEvents, err)
	}

	return outcomes, nil
}

func collectTestEventRows(rows pgx.Rows) ([]models.TestEventRow, error) {
	defer rows.Close()

	var results []models.TestEventRow
	for rows.Next() {
		var row models.TestEventRow
		err := rows.Scan(
			&row.ID, &row.BoardID, &row.SerialNumber, &row.MachineID, &row.OperatorID,
			&row.StartTimestamp, &row.EndTimestamp, &row.ResultCode,
			&row.TestType, &row.Side, &row.PositionFlan,
			&row.ConfigLineID, &row.ProcessID,
			&row.ReferenceCode, &row.UnitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanTestEvent, err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(errIterateTestEvents, err)
	}

	return results, nil
}
