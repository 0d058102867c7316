package cli

import (
	"fmt"

	osmoerrors "github.com/osmo-tool/osmo/errors"
)

// DemoModel is the vending machine model bundled with the CLI. It is a
// convention-based model: steps, guards, and weights are discovered from
// the method names. It doubles as an end-to-end exercise of guard
// behavior, since vend and refund only enable once coins are inserted.
type DemoModel struct {
	coins   int
	stocked int
}

// NewDemoModel returns a freshly stocked machine.
func NewDemoModel() *DemoModel {
	return &DemoModel{stocked: 100}
}

// BeforeTest resets the machine between generated tests.
func (m *DemoModel) BeforeTest() {
	m.coins = 0
	m.stocked = 100
}

// StepInsertCoin is always enabled.
func (m *DemoModel) StepInsertCoin() {
	m.coins++
}

// GuardVend enables vending only when a coin has been paid and stock
// remains.
func (m *DemoModel) GuardVend() bool {
	return m.coins > 0 && m.stocked > 0
}

// StepVend dispenses one item per coin.
func (m *DemoModel) StepVend() error {
	if m.coins <= 0 {
		return osmoerrors.Assertionf("vend without payment")
	}
	m.coins--
	m.stocked--
	return nil
}

// WeightVend biases selection toward vending when it is enabled.
func (m *DemoModel) WeightVend() float64 {
	return 3.0
}

// GuardRefund enables refunds only while coins are held.
func (m *DemoModel) GuardRefund() bool {
	return m.coins > 0
}

// StepRefund returns all held coins.
func (m *DemoModel) StepRefund() error {
	if m.coins <= 0 {
		return fmt.Errorf("refund with empty cash box")
	}
	m.coins = 0
	return nil
}
