package zipkit

import (
	"testing"
)

func TestGetConfig(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		want    Config
	}{
		{
			name:    "default values",
			envVars: map[string]string{},
			want: Config{
				Method: "deflate",
				Level:  -1,
			},
		},
		{
			name: "store method with explicit level",
			envVars: map[string]string{
				"BEAVER_ZIPKIT_METHOD": "store",
				"BEAVER_ZIPKIT_LEVEL":  "9",
			},
			want: Config{
				Method: "store",
				Level:  9,
			},
		},
		{
			name: "archive comment",
			envVars: map[string]string{
				"BEAVER_ZIPKIT_COMMENT": "nightly build",
			},
			want: Config{
				Method:  "deflate",
				Level:   -1,
				Comment: "nightly build",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			got, err := GetConfig()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *got != tt.want {
				t.Errorf("GetConfig() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestDefaultOptionsFromConfig(t *testing.T) {
	t.Run("nil config falls back to deflate", func(t *testing.T) {
		opts := defaultOptions(nil)
		if opts.Method != Deflate {
			t.Errorf("expected Deflate, got %v", opts.Method)
		}
	})

	t.Run("config selects method and level", func(t *testing.T) {
		opts := defaultOptions(&Config{Method: "store", Level: 3})
		if opts.Method != Store {
			t.Errorf("expected Store, got %v", opts.Method)
		}
		if opts.Level != 3 {
			t.Errorf("expected level 3, got %d", opts.Level)
		}
	})

	t.Run("unknown method keeps the default", func(t *testing.T) {
		opts := defaultOptions(&Config{Method: "lz4", Level: -1})
		if opts.Method != Deflate {
			t.Errorf("expected Deflate for unknown method, got %v", opts.Method)
		}
	})
}
