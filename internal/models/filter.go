package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FilterColumn is the closed set of columns test events may be filtered or grouped by
type FilterColumn int

const (
	FilterUnknown FilterColumn = iota
	FilterResultCode
	FilterMachineID
	FilterOperatorID
	FilterBoardID
	FilterSerialNumber
	FilterTestType
	FilterReferenceCode
)

var filterColumnNames = map[FilterColumn]string{
	FilterResultCode:    "result_code",
	FilterMachineID:     "machine_id",
	FilterOperatorID:    "operator_id",
	FilterBoardID:       "board_id",
	FilterSerialNumber:  "serial_number",
	FilterTestType:      "test_type",
	FilterReferenceCode: "reference_code",
}

// legacy column names used by the line database exports
var filterColumnAliases = map[string]FilterColumn{
	"result":          FilterResultCode,
	"id_machine":      FilterMachineID,
	"id_operateur":    FilterOperatorID,
	"id_board":        FilterBoardID,
	"num_serie":       FilterSerialNumber,
	"typetest":        FilterTestType,
	"ref_asteelflash": FilterReferenceCode,
}

// FilterColumns returns every valid column in declaration order.
func FilterColumns() []FilterColumn {
	return []FilterColumn{
		FilterResultCode,
		FilterMachineID,
		FilterOperatorID,
		FilterBoardID,
		FilterSerialNumber,
		FilterTestType,
		FilterReferenceCode,
	}
}

// ParseFilterColumn maps an external column name onto the allow-list
func ParseFilterColumn(name string) (FilterColumn, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for col, colName := range filterColumnNames {
		if colName == normalized {
			return col, nil
		}
	}
	if col, ok := filterColumnAliases[normalized]; ok {
		return col, nil
	}
	return FilterUnknown, fmt.Errorf("%w: %q", ErrInvalidFilterColumn, name)
}

// String returns the canonical column name
func (c FilterColumn) String() string {
	if name, ok := filterColumnNames[c]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether c belongs to the allow-list
func (c FilterColumn) Valid() bool {
	_, ok := filterColumnNames[c]
	return ok
}

// ParseValue converts a raw filter value into the type stored for the column.
func (c FilterColumn) ParseValue(raw string) (interface{}, error) {
	value := strings.TrimSpace(raw)
	switch c {
	case FilterResultCode:
		code, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer, got %q", ErrInvalidFilterValue, c, raw)
		}
		return code, nil
	case FilterBoardID:
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer, got %q", ErrInvalidFilterValue, c, raw)
		}
		return id, nil
	case FilterMachineID, FilterOperatorID, FilterSerialNumber, FilterTestType, FilterReferenceCode:
		return value, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidFilterColumn, int(c))
	}
}

// Key extracts the column value from a row as a grouping key
func (c FilterColumn) Key(row TestEventRow) string {
	switch c {
	case FilterResultCode:
		if row.ResultCode == nil {
			return ""
		}
		return strconv.Itoa(*row.ResultCode)
	case FilterMachineID:
		return row.MachineID
	case FilterOperatorID:
		return row.OperatorID
	case FilterBoardID:
		return strconv.FormatInt(row.BoardID, 10)
	case FilterSerialNumber:
		return row.SerialNumber
	case FilterTestType:
		return row.TestType
	case FilterReferenceCode:
		return row.ReferenceCode
	default:
		return ""
	}
}

// Matches reports whether the row holds value in this column
func (c FilterColumn) Matches(row TestEventRow, value string) bool {
	parsed, err := c.ParseValue(value)
	if err != nil {
		return false
	}
	return c.Key(row) == fmt.Sprint(parsed)
}
