// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package placement

//go:generate stringer -type=FadingState

import (
	"github.com/tilecut/tilecut/internal/core"
)

// FadingState enumerates the phases of a label's fade cycle.
type FadingState uint8

const (
	// FadingUndefined is the state before the first fade-in request.
	FadingUndefined FadingState = iota

	FadingIn
	FadedIn
	FadingOut
	FadedOut
)

// DefaultFadeTime is the duration of a full fade, in seconds.
const DefaultFadeTime = 0.8

// RenderState is the per-element fade state machine.  One instance exists
// per visible text part and per visible icon part of a label.  All of its
// arithmetic is pure and deterministic; value and opacity stay in [0,1].
type RenderState struct {
	// FadeTime is the duration of a full fade in seconds.
	FadeTime float64

	// Value is the linear progress of the current fade, in [0,1].
	Value float64

	// Opacity is the smoothed opacity derived from Value.
	Opacity float64

	startTime float64
	state     FadingState
}

// NewRenderState returns a state machine with the given fade duration; a
// non-positive fadeTime selects DefaultFadeTime.
func NewRenderState(fadeTime float64) *RenderState {
	if fadeTime <= 0 {
		fadeTime = DefaultFadeTime
	}

	return &RenderState{FadeTime: fadeTime}
}

// State returns the current fading state.
func (rs *RenderState) State() FadingState { return rs.state }

// Reset re-initializes the state machine to Undefined.
func (rs *RenderState) Reset() {
	rs.startTime = 0
	rs.Value = 0
	rs.Opacity = 0
	rs.state = FadingUndefined
}

// IsUndefined is true before the first fade-in request.
func (rs *RenderState) IsUndefined() bool { return rs.state == FadingUndefined }

// IsFading is true while a fade is in flight.
func (rs *RenderState) IsFading() bool {
	return rs.state == FadingIn || rs.state == FadingOut
}

// IsFadingIn is true while fading in.
func (rs *RenderState) IsFadingIn() bool { return rs.state == FadingIn }

// IsFadingOut is true while fading out.
func (rs *RenderState) IsFadingOut() bool { return rs.state == FadingOut }

// IsFadedIn is true once fade-in completed.
func (rs *RenderState) IsFadedIn() bool { return rs.state == FadedIn }

// IsFadedOut is true once fade-out completed.
func (rs *RenderState) IsFadedOut() bool { return rs.state == FadedOut }

// IsVisible is true iff the element contributes pixels: the state is
// neither Undefined nor FadedOut and the opacity is positive.
func (rs *RenderState) IsVisible() bool {
	return rs.state != FadingUndefined && rs.state != FadedOut && rs.Opacity > 0
}

// StartFadeIn begins or resumes a fade-in at the given time.  A no-op when
// already fading in or faded in.  When the element is mid fade-out, a
// virtual start time is computed so the reversal continues from the current
// opacity instead of restarting from zero.
func (rs *RenderState) StartFadeIn(time float64, disableFading bool) {
	if rs.state == FadingIn || rs.state == FadedIn {
		return
	}

	if disableFading {
		rs.Value = 1
		rs.Opacity = 1
		rs.state = FadedIn

		return
	}

	if rs.state == FadingOut {
		// Fade-out progress v leaves opacity S(1-v); fade-in needs
		// progress 1-v to resume at the same opacity.
		rs.startTime = time - (1-rs.Value)*rs.FadeTime
	} else {
		rs.startTime = time
		rs.Value = 0
		rs.Opacity = 0
	}

	rs.state = FadingIn
}

// StartFadeOut begins or resumes a fade-out at the given time.  A no-op
// when already fading out, faded out, or never shown.
func (rs *RenderState) StartFadeOut(time float64) {
	if rs.state == FadingOut || rs.state == FadedOut || rs.state == FadingUndefined {
		return
	}

	if rs.state == FadingIn {
		rs.startTime = time - (1-rs.Value)*rs.FadeTime
	} else {
		rs.startTime = time
		rs.Value = 0
	}

	rs.state = FadingOut
}

// UpdateFading advances the fade at the given time.  A no-op unless a fade
// is in flight.  Once progress reaches 1, or when disableFading is set, the
// state clamps to its terminal FadedIn/FadedOut.
func (rs *RenderState) UpdateFading(time float64, disableFading bool) {
	if rs.state != FadingIn && rs.state != FadingOut {
		return
	}

	fadingTime := time - rs.startTime
	value := fadingTime / rs.FadeTime

	if disableFading || value >= 1 {
		rs.Value = 1

		if rs.state == FadingIn {
			rs.Opacity = 1
			rs.state = FadedIn
		} else {
			rs.Opacity = 0
			rs.state = FadedOut
		}

		return
	}

	rs.Value = core.Clamp(value, 0, 1)

	if rs.state == FadingIn {
		rs.Opacity = core.SmootherStep(rs.Value)
	} else {
		rs.Opacity = core.SmootherStep(1 - rs.Value)
	}
}
