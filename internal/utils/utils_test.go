package utils

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"off", true, false},
		{"0", true, false},
		{"garbage", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("OPTKIT_TEST_BOOL", tt.value)
			if got := GetEnvAsBool("OPTKIT_TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("GetEnvAsBool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestGetEnvAsMillis(t *testing.T) {
	os.Unsetenv("OPTKIT_TEST_MS")
	if got := GetEnvAsMillis("OPTKIT_TEST_MS", time.Second); got != time.Second {
		t.Errorf("expected default 1s, got %v", got)
	}

	t.Setenv("OPTKIT_TEST_MS", "250")
	if got := GetEnvAsMillis("OPTKIT_TEST_MS", time.Second); got != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", got)
	}

	t.Setenv("OPTKIT_TEST_MS", "-5")
	if got := GetEnvAsMillis("OPTKIT_TEST_MS", time.Second); got != time.Second {
		t.Errorf("expected default for negative input, got %v", got)
	}
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("OPTKIT_TEST_SLICE", " a, b ,,c ")
	got := GetEnvAsSlice("OPTKIT_TEST_SLICE", nil, ",")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetEnvAsSlice = %v, want %v", got, want)
	}
}

func TestUpperAll(t *testing.T) {
	got := UpperAll([]string{"get", "Post", "GET", " ", "delete"})
	want := []string{"GET", "POST", "DELETE"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UpperAll = %v, want %v", got, want)
	}
}
