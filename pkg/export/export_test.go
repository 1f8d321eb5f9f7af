package export

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/qarun/pkg/catalogue"
	"github.com/dkoosis/qarun/pkg/form"
	"github.com/dkoosis/qarun/pkg/report"
)

func testIndex(t *testing.T) *catalogue.Index {
	t.Helper()
	root, err := catalogue.Decode([]byte(`{
		"web": {"login": [
			{"id": "WEB-LGN-01", "feature": "Login", "scenario": "Valid login"},
			{"id": "WEB-LGN-02", "feature": "Login", "scenario": "Wrong password"}
		]},
		"mobile": {"orders": [{"id": "MOB-ORD-01", "scenario": "Place order"}]}
	}`))
	require.NoError(t, err)
	idx, err := catalogue.NewIndex(root)
	require.NoError(t, err)
	return idx
}

func TestBuild_IncludesOnlyAnsweredCases_InCatalogueOrder(t *testing.T) {
	t.Parallel()

	values := form.Values{
		form.FieldTesterName: "Abebe Bikila",
		form.FieldTestDate:   "2025-03-01",
		form.FieldBrowser:    "Firefox 124",
	}
	values.SetStatus("MOB-ORD-01", report.StatusBlocked)
	values.SetComment("MOB-ORD-01", "  no test account  ")
	values.SetStatus("WEB-LGN-01", report.StatusPass)

	now := time.Date(2025, 3, 1, 14, 30, 0, 0, time.FixedZone("EAT", 3*3600))
	r := Build(values, testIndex(t), Meta{Section: "web", SessionID: "s-1", Now: now})

	assert.Equal(t, "Abebe Bikila", r.TesterName)
	assert.Equal(t, "2025-03-01", r.TestDate)
	assert.Equal(t, []report.Result{
		{ID: "WEB-LGN-01", Scenario: "Valid login", Feature: "Login", Status: report.StatusPass},
		{ID: "MOB-ORD-01", Scenario: "Place order", Status: report.StatusBlocked, Comment: "no test account"},
	}, r.Results)
	assert.Equal(t, &report.Info{
		Browser:    "Firefox 124",
		AppSection: "web",
		SessionID:  "s-1",
		ExportedAt: "2025-03-01T11:30:00Z",
	}, r.Info)
}

func TestBuild_ProducesEmptyResults_When_NothingAnswered(t *testing.T) {
	t.Parallel()

	r := Build(form.Values{}, testIndex(t), Meta{})
	require.NotNil(t, r.Results)
	assert.Empty(t, r.Results)

	_, err := uuid.Parse(r.Info.SessionID)
	assert.NoError(t, err, "a session id is generated")

	data, err := r.Marshal()
	require.NoError(t, err)
	back, err := report.Parse(data)
	require.NoError(t, err)
	assert.Empty(t, back.Results)
}

func TestFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, date, want string
	}{
		{"Abebe Bikila", "2025-03-01", "test-results_Abebe_Bikila_2025-03-01.json"},
		{"", "", "test-results_tester_date.json"},
		{"  ", "2025-03-01", "test-results_tester_2025-03-01.json"},
		{"../../etc/passwd", "2025-03-01", "test-results_.._.._etc_passwd_2025-03-01.json"},
		{`a:b*c?"d"<e>|f\g`, "x", "test-results_a_b_c__d__e__f_g_x.json"},
		{"Zoë Ñandú", "2025-03-01", "test-results_Zoë_Ñandú_2025-03-01.json"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Filename(tc.name, tc.date), tc.name)
	}
}

func TestWrite_CreatesDirectoryAndFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r := &report.Report{TesterName: "Sara", TestDate: "2025-03-02"}

	path, err := Write(fs, "/out/reports", r)
	require.NoError(t, err)
	assert.Equal(t, "/out/reports/test-results_Sara_2025-03-02.json", path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"testerName":"Sara","testDate":"2025-03-02","results":[]}`, string(data))
}
