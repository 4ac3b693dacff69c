package utils

import (
	"reflect"
	"testing"
)

func TestPreferRoutable(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"drops link-local when routable exists", []string{"169.254.1.2", "192.168.1.10"}, []string{"192.168.1.10"}},
		{"keeps link-local when alone", []string{"169.254.1.2"}, []string{"169.254.1.2"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preferRoutable(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("preferRoutable(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPollURLs(t *testing.T) {
	got := PollURLs([]string{"10.0.0.5"}, "7070")
	want := "http://10.0.0.5:7070/api/check-for-update/<deviceId>"
	if len(got) != 1 || got[0] != want {
		t.Errorf("PollURLs = %v, want [%s]", got, want)
	}
}
