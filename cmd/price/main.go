package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/pricing"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/state"
)

var rule = strings.Repeat("=", 80)

// #region main

func main() {
	lockedSeed := flag.Uint64("locked-seed", 42, "seed for the locked state")
	unlockedSeed := flag.Uint64("unlocked-seed", 43, "seed for the unlocked state")
	paths := flag.Int("paths", 1000, "Monte-Carlo paths for the barrier option")
	tte := flag.Float64("tte", 1.0, "time to expiry")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	locked := state.LockedFromSeed(*lockedSeed)
	unlocked := state.UnlockedFromSeed(*unlockedSeed)

	printMetrics("LOCKED STATE", locked)
	printMetrics("UNLOCKED STATE", unlocked)

	if err := printPrices(locked, unlocked, *paths, *tte); err != nil {
		slog.Error("pricing failed", "err", err)
		os.Exit(1)
	}
	if err := printMarket(); err != nil {
		slog.Error("market maker failed", "err", err)
		os.Exit(1)
	}
	printGreeks(locked, *tte)
}

// #endregion main

// #region sections

func header(title string) {
	fmt.Println(rule)
	fmt.Println(title)
	fmt.Println(rule)
}

func printMetrics(title string, s state.PhaseLockState) {
	header(title + ":")
	m := state.AllMetrics(s)
	rows := []struct {
		name string
		v    float64
	}{
		{"K", m.K},
		{"epsilon_cap", m.Capture},
		{"epsilon_stab", m.Stability},
		{"zeta", m.Brittleness},
		{"s_f", m.Eligibility},
		{"e_phi", m.PhaseError},
		{"chi", m.Criticality},
		{"harmony", m.Harmony},
	}
	for _, r := range rows {
		fmt.Printf("  %-15s = %10.4f\n", r.name, r.v)
	}
	fmt.Println()
}

func printPrices(locked, unlocked state.PhaseLockState, paths int, tte float64) error {
	header("DERIVATIVE PRICES:")

	fmt.Println("\nLock-Future (LF):")
	fmt.Printf("  Locked state:   %.4f\n", pricing.PriceLockFuture(locked, tte))
	fmt.Printf("  Unlocked state: %.4f\n", pricing.PriceLockFuture(unlocked, tte))

	params := pricing.DefaultBarrierParams()
	params.Paths = paths
	params.TimeToExpiry = tte
	fmt.Printf("\nPhase-Barrier Option (PBO, barrier=%g°):\n", params.Barrier)
	for _, row := range []struct {
		label string
		s     state.PhaseLockState
		seed  uint64
	}{
		{"Locked state:  ", locked, 1},
		{"Unlocked state:", unlocked, 2},
	} {
		est, err := pricing.EstimateBarrier(state.NewRand(row.seed), row.s, params)
		if err != nil {
			return err
		}
		fmt.Printf("  %s %.4f ± %.4f\n", row.label, est.Price, est.StdErr)
	}

	terms := pricing.DefaultSwapTerms()
	fmt.Println("\nEligibility-Failure Swap (EFS):")
	for _, row := range []struct {
		label string
		s     state.PhaseLockState
	}{
		{"Locked state:  ", locked},
		{"Unlocked state:", unlocked},
	} {
		p, err := pricing.PriceSwap(row.s, terms)
		if err != nil {
			return err
		}
		fmt.Printf("  %s %.4f\n", row.label, p)
	}
	fmt.Println()
	return nil
}

func printMarket() error {
	header("LMSR MARKET MAKER:")
	mm, err := pricing.NewMarketMaker(100)
	if err != nil {
		return err
	}
	fmt.Println("\nInitial prices:")
	for _, in := range pricing.Instruments {
		p, err := mm.Price(in)
		if err != nil {
			return err
		}
		fmt.Printf("  %-4s %.4f\n", string(in)+":", p)
	}

	cost, err := mm.Execute(pricing.LockFuture, 50)
	if err != nil {
		return err
	}
	p, err := mm.Price(pricing.LockFuture)
	if err != nil {
		return err
	}
	fmt.Printf("\nBuy 50 LF: Cost = %.4f\n", cost)
	fmt.Printf("New LF price: %.4f\n\n", p)
	return nil
}

func printGreeks(s state.PhaseLockState, tte float64) {
	header("GREEKS (LF on locked state):")
	g := pricing.AllGreeks(pricing.PriceLockFuture, s, tte)
	fmt.Printf("  Δ_f:  (%.6f, %.6f)\n", g.DeltaFA, g.DeltaFB)
	fmt.Printf("  Δ_φ:  (%.6f, %.6f)\n", g.DeltaPhiA, g.DeltaPhiB)
	fmt.Printf("  Θ:    %.6f\n", g.Theta)
	fmt.Printf("  Γ:    %.6f\n", g.Gamma)
	fmt.Printf("  Vega: %.6f\n", g.Vega)
}

// #endregion sections
