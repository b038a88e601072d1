package gametheory

// Shared precondition checks. Every analyzer validates its full parameter
// record through these before computing anything, so a failed call never
// produces a partial result.

// checkNonNegative verifies value >= 0.
func checkNonNegative(field string, value float64) error {
	if value < 0 {
		return invalidf("%s must be >= 0, got %g", field, value)
	}
	return nil
}

// checkProbability verifies value is in the closed interval [0, 1].
func checkProbability(field string, value float64) error {
	if value < 0 || value > 1 {
		return invalidf("%s must be in [0, 1], got %g", field, value)
	}
	return nil
}

// checkOpenUnitInterval verifies value is in the open interval (0, 1).
func checkOpenUnitInterval(field string, value float64) error {
	if value <= 0 || value >= 1 {
		return invalidf("%s must be in (0, 1), got %g", field, value)
	}
	return nil
}

// checkPositive verifies value > 0.
func checkPositive(field string, value float64) error {
	if value <= 0 {
		return invalidf("%s must be > 0, got %g", field, value)
	}
	return nil
}

// checkDilemmaOrdering verifies the strict prisoner's dilemma payoff
// ordering T > R > P > S required by the repeated-game analysis.
func checkDilemmaOrdering(temptation, reward, punishment, sucker float64) error {
	if !(temptation > reward && reward > punishment && punishment > sucker) {
		return invalidf(
			"payoffs must satisfy T > R > P > S, got T=%g R=%g P=%g S=%g",
			temptation, reward, punishment, sucker)
	}
	return nil
}
