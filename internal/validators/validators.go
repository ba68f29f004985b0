package validators

import (
	"fmt"
	"math"

	"github.com/cloud-ru/mcp-realty-go/internal/config"
	"github.com/cloud-ru/mcp-realty-go/pkg/utils"
)

// ValidatePositiveNumber проверяет, что число конечно и в допустимом диапазоне
func ValidatePositiveNumber(name string, value float64, minInclusive, maxInclusive float64) error {
	if !utils.IsFinite(value) {
		return fmt.Errorf("%s: значение не является конечным числом", name)
	}
	if value < minInclusive {
		return fmt.Errorf("%s: значение должно быть ≥ %g", name, minInclusive)
	}
	if value > maxInclusive {
		return fmt.Errorf("%s: значение слишком велико (>%g)", name, maxInclusive)
	}
	return nil
}

// ValidateIntRange проверяет, что целое число в допустимом диапазоне
func ValidateIntRange(name string, value int, minInclusive, maxInclusive int) error {
	if value < minInclusive || value > maxInclusive {
		return fmt.Errorf("%s: значение должно быть в диапазоне [%d; %d]", name, minInclusive, maxInclusive)
	}
	return nil
}

// CheckPrincipal проверяет сумму кредита
func CheckPrincipal(cfg *config.Config, principal float64) error {
	return ValidatePositiveNumber("principal", principal, 1e-9, cfg.MaxPrincipal)
}

// CheckRate проверяет ставку; значение до 1 считается долей и сравнивается с лимитом в процентах
func CheckRate(cfg *config.Config, name string, rate float64) error {
	percent := rate
	if math.Abs(rate) <= 1 {
		percent = rate * 100
	}
	if err := ValidatePositiveNumber(name, rate, 0.0, math.Inf(1)); err != nil {
		return err
	}
	if percent > cfg.MaxRate {
		return fmt.Errorf("%s: ставка слишком велика (>%g%%)", name, cfg.MaxRate)
	}
	return nil
}

// CheckLoanYears проверяет срок кредита
func CheckLoanYears(cfg *config.Config, years int) error {
	return ValidateIntRange("years", years, 1, cfg.MaxYears)
}

// CheckStartMonth проверяет месяц первого платежа
func CheckStartMonth(month int) error {
	return ValidateIntRange("start_month", month, 1, 12)
}

// CheckHorizon проверяет горизонт расчета
func CheckHorizon(cfg *config.Config, years int) error {
	return ValidateIntRange("years", years, 1, cfg.MaxHorizon)
}

// CheckAmount проверяет неотрицательную денежную сумму
func CheckAmount(cfg *config.Config, name string, amount float64) error {
	return ValidatePositiveNumber(name, amount, 0.0, cfg.MaxPrincipal)
}

// CheckLife проверяет нормативный срок службы
func CheckLife(name string, life int) error {
	return ValidateIntRange(name, life, 1, 100)
}

// CheckElapsedYears проверяет возраст актива
func CheckElapsedYears(elapsed int) error {
	return ValidateIntRange("elapsed_years", elapsed, 0, 200)
}

// CheckUnits проверяет количество квартир
func CheckUnits(units int) error {
	return ValidateIntRange("units", units, 0, 100000)
}
