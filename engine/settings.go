// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/settings.go
// Summary: Engine settings with defaults.

package engine

import "time"

// DoubleAction selects what a double-click (or Enter/Space on a focused
// column handle) does.
type DoubleAction string

const (
	// DoubleActionAutofit grows or shrinks the column left of the handle
	// to fit its widest cell content.
	DoubleActionAutofit DoubleAction = "autofit"
	// DoubleActionReset splits the pair's combined width evenly, the
	// larger half favoring the left column on odd totals.
	DoubleActionReset DoubleAction = "reset"
	// DoubleActionNone disables the action.
	DoubleActionNone DoubleAction = "none"
)

// OuterMode selects how the whole-table handle distributes growth.
type OuterMode string

const (
	// OuterModeEdge gives all delta to the first and last columns.
	OuterModeEdge OuterMode = "edge"
	// OuterModeScale multiplies every column by the same factor.
	OuterModeScale OuterMode = "scale"
)

// Settings configures the engine. The zero value is not usable; start from
// DefaultSettings.
type Settings struct {
	MinColumnWidth float64      `json:"minColumnWidth"`
	MinRowHeight   float64      `json:"minRowHeight"`
	SnapStep       float64      `json:"snapStep"`
	KeyboardStep   float64      `json:"keyboardStep"`
	DoubleAction   DoubleAction `json:"doubleAction"`
	OuterMode      OuterMode    `json:"outerMode"`
	// MaxTableWidth caps the outer handle; 0 means unbounded.
	MaxTableWidth float64 `json:"maxTableWidth"`
	// AutofitBuffer is added to the widest cell content on autofit.
	AutofitBuffer float64 `json:"autofitBuffer"`
	// BreakoutBleed is the symmetric gutter kept between an expanded
	// container and the pane edges.
	BreakoutBleed    float64 `json:"breakoutBleed"`
	EnableOuterHandle bool   `json:"enableOuterHandle"`
	EnableRowHandles  bool   `json:"enableRowHandles"`

	// Retry policy for unmeasurable layouts.
	RetryAttempts  int           `json:"-"`
	RetryBaseDelay time.Duration `json:"-"`
	RetryMaxDelay  time.Duration `json:"-"`
	// BindSettleDelay coalesces the first breakout evaluation after a
	// bind, since host layout may not have settled.
	BindSettleDelay time.Duration `json:"-"`
	// CenterThrottle bounds scroll re-centering during an outer drag.
	CenterThrottle time.Duration `json:"-"`
}

// DefaultSettings returns the engine defaults.
func DefaultSettings() Settings {
	return Settings{
		MinColumnWidth:    60,
		MinRowHeight:      22,
		SnapStep:          0,
		KeyboardStep:      10,
		DoubleAction:      DoubleActionAutofit,
		OuterMode:         OuterModeScale,
		MaxTableWidth:     0,
		AutofitBuffer:     8,
		BreakoutBleed:     16,
		EnableOuterHandle: true,
		EnableRowHandles:  true,
		RetryAttempts:     5,
		RetryBaseDelay:    50 * time.Millisecond,
		RetryMaxDelay:     800 * time.Millisecond,
		BindSettleDelay:   50 * time.Millisecond,
		CenterThrottle:    50 * time.Millisecond,
	}
}
