package ratetable

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Shape - форма строк исходного файла, определяется один раз при загрузке
type Shape int

const (
	// ShapeUnrecognized - источник отсутствует или не распознан, все значения нейтральны
	ShapeUnrecognized Shape = iota
	// ShapeSingleColumn - одна колонка, строка N соответствует году N
	ShapeSingleColumn
	// ShapePaired - пары "год,значение"
	ShapePaired
)

func (s Shape) String() string {
	switch s {
	case ShapeSingleColumn:
		return "single_column"
	case ShapePaired:
		return "paired"
	default:
		return "unrecognized"
	}
}

const (
	// NeutralCorrection - значение по умолчанию для поправочных коэффициентов
	NeutralCorrection = 1.0
	// NeutralAmount - значение по умолчанию для годовых сумм
	NeutralAmount = 0.0
)

// Table - неизменяемая таблица "год -> значение"
type Table struct {
	shape   Shape
	neutral float64
	values  map[int]float64
}

// Neutral возвращает пустую таблицу, где любой год дает neutral
func Neutral(neutral float64) *Table {
	return &Table{shape: ShapeUnrecognized, neutral: neutral}
}

// FromValues строит таблицу из готового отображения год -> значение.
// Отрицательные и нечисловые значения отбрасываются.
func FromValues(values map[int]float64, neutral float64) *Table {
	t := &Table{shape: ShapePaired, neutral: neutral, values: make(map[int]float64, len(values))}
	for year, v := range values {
		if year >= 1 && validValue(v) {
			t.values[year] = v
		}
	}
	return t
}

// Shape возвращает форму исходных данных
func (t *Table) Shape() Shape {
	if t == nil {
		return ShapeUnrecognized
	}
	return t.shape
}

// Len возвращает количество явно заданных лет
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}

// Lookup возвращает значение для года; для незаданного года - нейтральное значение.
// Для nil-таблицы нейтральным считается 1.0.
func (t *Table) Lookup(year int) float64 {
	if t == nil {
		return NeutralCorrection
	}
	if v, ok := t.values[year]; ok {
		return v
	}
	return t.neutral
}

// Series возвращает значения для лет 1..years
func (t *Table) Series(years int) []float64 {
	if years <= 0 {
		return []float64{}
	}
	out := make([]float64, years)
	for y := 1; y <= years; y++ {
		out[y-1] = t.Lookup(y)
	}
	return out
}

// Parse читает таблицу из r. Пустые строки и строки, начинающиеся с '#', пропускаются;
// строки, которые не удалось разобрать, а также NaN, Inf и отрицательные значения игнорируются,
// и для таких лет действует нейтральное значение. Ошибка возвращается только при сбое чтения.
func Parse(r io.Reader, neutral float64) (*Table, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return Neutral(neutral), nil
	}

	paired := false
	for _, row := range rows {
		if len(row) >= 2 {
			paired = true
			break
		}
	}

	t := &Table{neutral: neutral, values: make(map[int]float64)}
	if paired {
		t.shape = ShapePaired
		for _, row := range rows {
			if len(row) < 2 {
				continue
			}
			year, ok := parseYear(row[0])
			if !ok {
				continue
			}
			v, err := parseValue(row[1])
			if err != nil {
				continue
			}
			t.values[year] = v
		}
	} else {
		t.shape = ShapeSingleColumn
		year := 1
		for _, row := range rows {
			v, err := parseValue(row[0])
			if err != nil {
				continue
			}
			t.values[year] = v
			year++
		}
	}

	if len(t.values) == 0 {
		return Neutral(neutral), nil
	}
	return t, nil
}

// readRows возвращает непустые строки без комментариев, разобранные как CSV
func readRows(r io.Reader) ([][]string, error) {
	var rows [][]string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := csv.NewReader(strings.NewReader(line)).Read()
		if err != nil {
			continue
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("чтение таблицы: %w", err)
	}
	return rows, nil
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
}

// parseValue разбирает множитель или сумму: конечное неотрицательное число
func parseValue(s string) (float64, error) {
	v, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if !validValue(v) {
		return 0, fmt.Errorf("недопустимое значение %q", s)
	}
	return v, nil
}

func parseYear(s string) (int, bool) {
	v, err := parseNumber(s)
	if err != nil || math.IsNaN(v) || v < 1 || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

func validValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
