package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ttani03/inetnums/internal/models"
)

func TestReport(t *testing.T) {
	sections := []Section{
		{
			OrgID:  "ORG-EX1-RIPE",
			Family: models.IPv4,
			Header: "cidr,netname,status,mnt-by",
			Rows: []models.Row{
				{Network: "192.0.2.0/24", NetName: "<script>", Status: "ASSIGNED PA", MntBy: []string{"A-MNT", "B-MNT"}},
			},
		},
		{OrgID: "ORG-EX1-RIPE", Family: models.IPv6, Header: "inet6num,netname,status,mnt-by"},
		{OrgID: "ORG-BAD", Family: models.IPv4, Error: "ERROR:101: no entries found"},
	}

	var buf bytes.Buffer
	if err := Report("inet[6]num report", sections).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<title>inet[6]num report</title>",
		"<th>cidr</th>",
		"<td>192.0.2.0/24</td>",
		"&lt;script&gt;",
		"<td>A-MNT B-MNT</td>",
		"<small>IPv6</small>",
		"No matching objects.",
		`<pre class="error">ERROR:101: no entries found</pre>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q", want)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Error("netname was not escaped")
	}
}
