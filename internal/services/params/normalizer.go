package params

import "FitPull/internal/domain/models"

// Normalize reconciles the fitter's coefficient-naming variants into the
// canonical record. It is total: any input, including an empty model, yields
// a fully-populated record with absent fields defaulted to zero.
//
// Each output field is resolved by a prioritized rule list, first match wins.
// A stored value of exactly 0.0 is indistinguishable from "absent" and falls
// through to the next rule; this mirrors the fallback behavior of the fitter
// clients this service replaced and is a known imprecision.
func Normalize(m models.FittedModel) models.NormalizedMetrics {
	return models.NormalizedMetrics{
		ArCoeff:         resolve(m, arCoeffRules),
		MaCoeff:         resolve(m, maCoeffRules),
		Const:           resolve(m, constRules),
		Omega:           resolve(m, omegaRules),
		Alpha:           resolve(m, alphaRules),
		Beta:            resolve(m, betaRules),
		GarchVolatility: resolve(m, volatilityRules),
	}
}

// rule extracts one candidate value for a field from a raw fitted model.
type rule struct {
	name  string
	apply func(m models.FittedModel) (float64, bool)
}

func flattened(key string) rule {
	return rule{
		name: "coefficients." + key,
		apply: func(m models.FittedModel) (float64, bool) {
			v, ok := m.Coefficients[key]
			return v, ok
		},
	}
}

func nestedArma(key string) rule {
	return rule{
		name: "arma." + key,
		apply: func(m models.FittedModel) (float64, bool) {
			v, ok := m.Arma[key]
			return v, ok
		},
	}
}

func nestedGarch(key string) rule {
	return rule{
		name: "garch." + key,
		apply: func(m models.FittedModel) (float64, bool) {
			v, ok := m.Garch[key]
			return v, ok
		},
	}
}

// Priority order per field. Library-version-specific variants (alpha[1]
// before alpha) come before their plain spellings.
var (
	arCoeffRules = []rule{
		flattened("ar_coeff"),
		nestedArma("ar_coef"),
		nestedArma("ar_coeff"),
	}
	maCoeffRules = []rule{
		flattened("ma_coeff"),
		nestedArma("ma_coef"),
		nestedArma("ma_coeff"),
	}
	constRules = []rule{
		flattened("const"),
		flattened("Const"),
	}
	omegaRules = []rule{
		flattened("omega"),
	}
	alphaRules = []rule{
		flattened("alpha[1]"),
		flattened("alpha"),
	}
	betaRules = []rule{
		flattened("beta[1]"),
		flattened("beta"),
	}
	volatilityRules = []rule{
		flattened("garch_volatility"),
		nestedGarch("last_volatility"),
		nestedGarch("garch_volatility"),
	}
)

func resolve(m models.FittedModel, rules []rule) float64 {
	for _, r := range rules {
		if v, ok := r.apply(m); ok && v != 0 {
			return v
		}
	}
	return 0
}
