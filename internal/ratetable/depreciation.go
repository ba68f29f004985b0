package ratetable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cloud-ru/mcp-realty-go/pkg/utils"
)

// DepreciationRates - таблица норм амортизации по сроку службы
// (service_life,declining_balance_rate,straight_line_rate)
type DepreciationRates struct {
	straightLine map[int]float64
	declining    map[int]float64
}

// StraightLine возвращает норму линейного метода для срока службы
func (d *DepreciationRates) StraightLine(life int) (float64, bool) {
	if d == nil {
		return 0, false
	}
	v, ok := d.straightLine[life]
	return v, ok
}

// DecliningBalance возвращает норму метода уменьшаемого остатка
func (d *DepreciationRates) DecliningBalance(life int) (float64, bool) {
	if d == nil {
		return 0, false
	}
	v, ok := d.declining[life]
	return v, ok
}

// Len возвращает количество сроков службы в таблице
func (d *DepreciationRates) Len() int {
	if d == nil {
		return 0
	}
	return len(d.straightLine)
}

// ParseDepreciationRates читает таблицу норм. Файл без нужных колонок дает пустую таблицу.
func ParseDepreciationRates(r io.Reader) (*DepreciationRates, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	out := &DepreciationRates{
		straightLine: make(map[int]float64),
		declining:    make(map[int]float64),
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("чтение заголовка норм амортизации: %w", err)
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	lifeCol, okLife := idx["service_life"]
	slCol, okSL := idx["straight_line_rate"]
	dbCol, okDB := idx["declining_balance_rate"]
	if !okLife || !okSL {
		return out, nil
	}

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// битая строка не должна ломать всю таблицу
			continue
		}
		if lifeCol >= len(rec) || slCol >= len(rec) {
			continue
		}
		life, err := strconv.Atoi(strings.TrimSpace(rec[lifeCol]))
		if err != nil || life <= 0 {
			continue
		}
		sl, err := parseValue(rec[slCol])
		if err != nil || sl > 1 {
			continue
		}
		out.straightLine[life] = utils.RoundTo(sl, 3)

		if okDB && dbCol < len(rec) {
			if db, err := parseValue(rec[dbCol]); err == nil && db <= 1 {
				out.declining[life] = utils.RoundTo(db, 3)
			}
		}
	}
	return out, nil
}

// RepairsPlan - план ремонтов: крупные капитальные затраты и ремонт оборудования по годам
type RepairsPlan struct {
	CapexLarge       *Table
	EquipmentRepairs *Table
}

// ParseRepairsPlan читает файл "year,capex_large,equipment_repairs" (заголовок необязателен).
// Возвращает nil, если строк с данными нет.
func ParseRepairsPlan(r io.Reader) (*RepairsPlan, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	start := 0
	if _, err := parseNumber(rows[0][0]); err != nil {
		start = 1
	}

	capex := map[int]float64{}
	equipment := map[int]float64{}
	for _, row := range rows[start:] {
		if len(row) < 3 {
			continue
		}
		year, ok := parseYear(row[0])
		if !ok {
			continue
		}
		c, err1 := parseValue(row[1])
		e, err2 := parseValue(row[2])
		if err1 != nil || err2 != nil {
			continue
		}
		capex[year] = c
		equipment[year] = e
	}
	if len(capex) == 0 {
		return nil, nil
	}
	return &RepairsPlan{
		CapexLarge:       FromValues(capex, NeutralAmount),
		EquipmentRepairs: FromValues(equipment, NeutralAmount),
	}, nil
}
