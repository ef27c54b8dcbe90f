package models

import (
	"encoding/json"
	"testing"
)

func TestFamilyObjectType(t *testing.T) {
	if got := IPv4.ObjectType(); got != "inetnum" {
		t.Errorf("IPv4.ObjectType() = %q, want inetnum", got)
	}
	if got := IPv6.ObjectType(); got != "inet6num" {
		t.Errorf("IPv6.ObjectType() = %q, want inet6num", got)
	}
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "plain string",
			body: `{"errormessages": "rate limit exceeded"}`,
			want: "rate limit exceeded",
		},
		{
			name: "ripe error list with args",
			body: `{"errormessages": {"errormessage": [{"severity": "Error", "text": "ERROR:101: no entries found\n\nNo entries found in source %s.\n", "args": [{"value": "RIPE"}]}]}}`,
			want: "ERROR:101: no entries found\n\nNo entries found in source RIPE.",
		},
		{
			name: "missing",
			body: `{}`,
			want: "response contains no objects and no error message",
		},
		{
			name: "unknown shape",
			body: `{"errormessages": {"foo": 1}}`,
			want: `{"foo": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp SearchResponse
			if err := json.Unmarshal([]byte(tt.body), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Objects != nil {
				t.Fatal("expected Objects to be nil")
			}
			if got := resp.ErrorText(); got != tt.want {
				t.Errorf("ErrorText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRowCSV(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want string
	}{
		{
			name: "single maintainer",
			row:  Row{Network: "192.0.2.0 - 192.0.2.255", NetName: "EXAMPLE-NET", Status: "ASSIGNED PA", MntBy: []string{"EXAMPLE-MNT"}},
			want: "192.0.2.0 - 192.0.2.255,EXAMPLE-NET,ASSIGNED PA,['EXAMPLE-MNT']",
		},
		{
			name: "duplicates kept in order",
			row:  Row{Network: "10.0.0.0/8", NetName: "N", Status: "LEGACY", MntBy: []string{"B-MNT", "A-MNT", "B-MNT"}},
			want: "10.0.0.0/8,N,LEGACY,['B-MNT', 'A-MNT', 'B-MNT']",
		},
		{
			name: "no maintainers",
			row:  Row{Network: "2001:db8::/32", NetName: "N", Status: "ASSIGNED"},
			want: "2001:db8::/32,N,ASSIGNED,[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.CSV(); got != tt.want {
				t.Errorf("CSV() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordComplete(t *testing.T) {
	if (Record{Network: "x", NetName: "y"}).Complete() {
		t.Error("record without status should be incomplete")
	}
	if !(Record{Network: "x", NetName: "y", Status: "z"}).Complete() {
		t.Error("record with all fields should be complete")
	}
}
