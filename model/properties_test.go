package model

import (
	"errors"
	"testing"
)

func TestParseResourceProperties(t *testing.T) {
	tests := []struct {
		name    string
		props   map[string]any
		want    ResourceProperties
		wantErr bool
	}{
		{
			name:  "valid",
			props: map[string]any{"ClusterName": "demo", "RegionName": "eu-west-1", "ServiceToken": "arn:aws:lambda:x"},
			want:  ResourceProperties{ClusterName: "demo", RegionName: "eu-west-1"},
		},
		{name: "nil map", props: nil, wantErr: true},
		{name: "missing cluster", props: map[string]any{"RegionName": "eu-west-1"}, wantErr: true},
		{name: "missing region", props: map[string]any{"ClusterName": "demo"}, wantErr: true},
		{name: "empty cluster", props: map[string]any{"ClusterName": "", "RegionName": "eu-west-1"}, wantErr: true},
		{name: "non-string region", props: map[string]any{"ClusterName": "demo", "RegionName": 42}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResourceProperties(tt.props)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrLoadingProperties) {
					t.Errorf("error %v should wrap ErrLoadingProperties", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
