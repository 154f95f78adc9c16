package activity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Rules(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	tests := []struct {
		name   string
		sample Sample
		want   Status
	}{
		{
			name:   "active dense screen is work",
			sample: Sample{ScreenChangeRate: 0.02, ComplexScene: true},
			want:   Working,
		},
		{
			name:   "active simple screen is entertainment",
			sample: Sample{ScreenChangeRate: 0.30},
			want:   Entertainment,
		},
		{
			name:   "screen hint overrides scene heuristic",
			sample: Sample{ScreenChangeRate: 0.05, ComplexScene: true, ScreenHint: HintEntertainment},
			want:   Entertainment,
		},
		{
			name:   "screen at threshold counts as active",
			sample: Sample{ScreenChangeRate: 0.01, ComplexScene: true},
			want:   Working,
		},
		{
			name:   "static screen, moving camera falls back to camera",
			sample: Sample{ScreenChangeRate: 0.001, CameraChangeRate: 0.2, CameraAvailable: true},
			want:   Working,
		},
		{
			name:   "camera hint decides when screen is static",
			sample: Sample{CameraChangeRate: 0.2, CameraAvailable: true, CameraHint: HintEntertainment},
			want:   Entertainment,
		},
		{
			name:   "both static is idle",
			sample: Sample{ScreenChangeRate: 0.005, CameraChangeRate: 0.005, CameraAvailable: true},
			want:   Idle,
		},
		{
			name:   "camera rate ignored when camera unavailable",
			sample: Sample{ScreenChangeRate: 0.0, CameraChangeRate: 0.9},
			want:   Idle,
		},
		{
			name:   "active screen ignores camera",
			sample: Sample{ScreenChangeRate: 0.5, CameraChangeRate: 0.0, CameraAvailable: true, ComplexScene: true},
			want:   Working,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Classify(tc.sample)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassify_ActiveScreenNeverIdle(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})
	hints := []Hint{HintNone, HintWorking, HintEntertainment}

	for screen := 0.01; screen <= 1.0; screen += 0.07 {
		for camera := 0.0; camera <= 1.0; camera += 0.25 {
			for _, dense := range []bool{true, false} {
				for _, h := range hints {
					s := Sample{
						ScreenChangeRate: screen,
						CameraChangeRate: camera,
						CameraAvailable:  true,
						ComplexScene:     dense,
						ScreenHint:       h,
						CameraHint:       h,
					}
					got, err := c.Classify(s)
					require.NoError(t, err)
					assert.NotEqual(t, Idle, got, "sample %+v classified idle", s)
				}
			}
		}
	}
}

func TestClassify_MissingCameraMatchesZeroCamera(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	for _, screen := range []float64{0, 0.005, 0.01, 0.2, 1} {
		for _, dense := range []bool{true, false} {
			without := Sample{ScreenChangeRate: screen, ComplexScene: dense, CameraChangeRate: 0.7}
			zero := Sample{ScreenChangeRate: screen, ComplexScene: dense, CameraAvailable: true}

			a, errA := c.Classify(without)
			b, errB := c.Classify(zero)
			require.NoError(t, errA)
			require.NoError(t, errB)
			assert.Equal(t, b, a, "screen=%v dense=%v", screen, dense)
		}
	}
}

func TestClassify_MalformedFallsBackToIdle(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	tests := []struct {
		name   string
		sample Sample
	}{
		{"negative screen", Sample{ScreenChangeRate: -0.1}},
		{"screen above one", Sample{ScreenChangeRate: 1.5}},
		{"NaN screen", Sample{ScreenChangeRate: math.NaN()}},
		{"infinite camera", Sample{CameraChangeRate: math.Inf(1), CameraAvailable: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Classify(tc.sample)
			require.ErrorIs(t, err, ErrMalformedSample)
			assert.Equal(t, Idle, got)
		})
	}
}

func TestClassify_CustomThresholds(t *testing.T) {
	c := NewClassifier(ClassifierConfig{ScreenThreshold: 0.1, CameraThreshold: 0.3})

	got, err := c.Classify(Sample{ScreenChangeRate: 0.05, ComplexScene: true})
	require.NoError(t, err)
	assert.Equal(t, Idle, got)

	got, err = c.Classify(Sample{ScreenChangeRate: 0.05, CameraChangeRate: 0.2, CameraAvailable: true})
	require.NoError(t, err)
	assert.Equal(t, Idle, got)

	got, err = c.Classify(Sample{ScreenChangeRate: 0.05, CameraChangeRate: 0.3, CameraAvailable: true})
	require.NoError(t, err)
	assert.Equal(t, Working, got)
}

func TestStatus_TextRoundTrip(t *testing.T) {
	for _, s := range AllStatuses {
		text, err := s.MarshalText()
		require.NoError(t, err)

		var back Status
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}

	_, err := ParseStatus("sleeping")
	assert.Error(t, err)
}
