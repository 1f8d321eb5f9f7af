package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/qarun/pkg/catalogue"
	"github.com/dkoosis/qarun/pkg/report"
)

const testCatalogue = `{
  "web_application": {
    "common_pages": {
      "landing_page": [
        {"id": "WEB-LND-01", "feature": "Landing Page", "scenario": "Open", "steps": "1. Go\n2. Look", "expected_result": "Shown"},
        {"id": "WEB-LND-02", "scenario": "Download"}
      ],
      "skipped": {}
    },
    "store_portal": {
      "dashboard": [{"id": "WEB-STR-01", "scenario": "Orders"}]
    }
  },
  "api_checks": [{"id": "API-01", "scenario": "Health"}],
  "mobile_application": {
    "driver_application": {
      "order_flow": [{"id": "MOB-DRV-01", "scenario": "Accept"}]
    }
  }
}`

func buildPlan(t *testing.T, opts Options) *Plan {
	t.Helper()
	root, err := catalogue.Decode([]byte(testCatalogue))
	require.NoError(t, err)
	p, err := Build(root, opts)
	require.NoError(t, err)
	return p
}

func TestBuild_MakesOneStepPerTopLevelKey(t *testing.T) {
	t.Parallel()

	p := buildPlan(t, Options{})

	require.Equal(t, 4, p.Total())
	assert.Equal(t, "Tester Information", p.Step(1).Title)
	assert.Len(t, p.Step(1).Fields, len(TesterFields))

	web := p.Step(2)
	assert.Equal(t, "web_application", web.Key)
	assert.Equal(t, "Web Application", web.Title)
	require.Len(t, web.Sections, 2)
	assert.Equal(t, "Common Pages", web.Sections[0].Title)
	require.Len(t, web.Sections[0].Sections, 1, "empty sub-keys are skipped")
	assert.Equal(t, 2, web.Sections[0].Sections[0].Depth)

	api := p.Step(3)
	assert.Empty(t, api.Sections)
	require.Len(t, api.Rows, 1, "a top-level list renders rows directly")

	assert.Nil(t, p.Step(0))
	assert.Nil(t, p.Step(5))
}

func TestBuild_RendersEveryIDInExactlyOneRow(t *testing.T) {
	t.Parallel()

	p := buildPlan(t, Options{})

	seen := map[string]int{}
	for _, s := range p.Steps {
		for _, r := range s.AllRows() {
			seen[r.Case.ID]++
		}
	}
	require.Len(t, seen, p.Index.Len())
	for _, id := range p.Index.IDs() {
		assert.Equal(t, 1, seen[id], id)
	}
	assert.Equal(t, 2, p.StepOf("WEB-STR-01"))
	assert.Equal(t, 4, p.StepOf("MOB-DRV-01"))
	assert.Zero(t, p.StepOf("NOPE"))
}

func TestBuild_NarrowsToSection_When_SectionIsSet(t *testing.T) {
	t.Parallel()

	p := buildPlan(t, Options{Section: "mobile_application.driver_application"})
	require.Equal(t, 2, p.Total())
	assert.Equal(t, "Order Flow", p.Step(2).Title)
	assert.Equal(t, []string{"MOB-DRV-01"}, p.Index.IDs())

	leaf := buildPlan(t, Options{Section: "web_application.common_pages.landing_page"})
	require.Equal(t, 2, leaf.Total())
	assert.Len(t, leaf.Step(2).Rows, 2)

	root, err := catalogue.Decode([]byte(testCatalogue))
	require.NoError(t, err)
	_, err = Build(root, Options{Section: "web_application.nope"})
	assert.ErrorIs(t, err, catalogue.ErrNotFound)
}

func TestRow_Detail_FallsBackToNA(t *testing.T) {
	t.Parallel()

	p := buildPlan(t, Options{})

	full, ok := p.Row("WEB-LND-01")
	require.True(t, ok)
	assert.Equal(t, Detail{Feature: "Landing Page", Steps: []string{"Go", "Look"}, Expected: "Shown"}, full.Detail())

	bare, ok := p.Row("WEB-LND-02")
	require.True(t, ok)
	assert.Equal(t, Detail{Feature: NotAvailable, Steps: []string{NotAvailable}, Expected: NotAvailable}, bare.Detail())
	assert.Equal(t, "WEB-LND-02_status", bare.StatusField())
	assert.Equal(t, "WEB-LND-02_comment", bare.CommentField())
}

func TestValidateStep_BlocksUntilStatusSelected(t *testing.T) {
	t.Parallel()

	p := buildPlan(t, Options{})
	v := Values{}

	verr := p.ValidateStep(3, v, true)
	require.NotNil(t, verr)
	assert.Equal(t, "API-01_status", verr.Field)
	assert.Equal(t, MsgSelectItem, verr.Message)

	v.SetStatus("API-01", report.StatusPass)
	assert.Nil(t, p.ValidateStep(3, v, true), "pass never needs a comment")
}

func TestValidateStep_RequiresComment_When_FailOrBlocked(t *testing.T) {
	t.Parallel()

	p := buildPlan(t, Options{})

	for _, s := range []report.Status{report.StatusFail, report.StatusBlocked} {
		v := Values{}
		v.SetStatus("API-01", s)

		verr := p.ValidateStep(3, v, true)
		require.NotNil(t, verr, s)
		assert.Equal(t, "API-01_comment", verr.Field)
		assert.Equal(t, MsgFillField, verr.Message)

		v.SetComment("API-01", "   ")
		assert.NotNil(t, p.ValidateStep(3, v, true), "whitespace is not a comment")

		v.SetComment("API-01", "spinner never stops")
		assert.Nil(t, p.ValidateStep(3, v, true))
		assert.Nil(t, p.ValidateStep(3, Values{"API-01_status": string(s)}, false), "relaxed mode skips checks")
	}
}

func TestValidateStep_ReportsFirstInvalidFieldInRowOrder(t *testing.T) {
	t.Parallel()

	p := buildPlan(t, Options{})
	v := Values{}
	v.SetStatus("WEB-LND-01", report.StatusPass)
	v.SetStatus("WEB-LND-02", report.StatusBlocked)

	verr := p.ValidateStep(2, v, true)
	require.NotNil(t, verr)
	assert.Equal(t, "WEB-LND-02", verr.CaseID)
	assert.Equal(t, "WEB-LND-02_comment", verr.Field)
	assert.Contains(t, verr.Error(), "step 2")
}

func TestValidateStep_RequiresTesterName(t *testing.T) {
	t.Parallel()

	p := buildPlan(t, Options{})

	verr := p.ValidateStep(1, Values{}, true)
	require.NotNil(t, verr)
	assert.Equal(t, FieldTesterName, verr.Field)

	assert.Nil(t, p.ValidateStep(1, Values{FieldTesterName: "Abebe"}, true))
}

func TestChecker_ReturnsUntypedNil_When_Valid(t *testing.T) {
	t.Parallel()

	p := buildPlan(t, Options{})
	v := Values{FieldTesterName: "Abebe"}
	check := p.Checker(v, true)

	assert.NoError(t, check(1))
	require.Error(t, check(3))

	v.SetStatus("API-01", report.StatusPass)
	assert.NoError(t, check(3), "checker reads values at call time")

	var verr *ValidationError
	require.ErrorAs(t, check(2), &verr)
	assert.Equal(t, 2, verr.Step)
}

func TestPlan_HasField(t *testing.T) {
	t.Parallel()

	p := buildPlan(t, Options{})
	assert.True(t, p.HasField(FieldTesterName))
	assert.True(t, p.HasField("API-01_status"))
	assert.True(t, p.HasField("MOB-DRV-01_comment"))
	assert.False(t, p.HasField("GONE-01_status"))
	assert.False(t, p.HasField("API-01"))
}

func TestValues_SetAndClone(t *testing.T) {
	t.Parallel()

	v := Values{}
	v.SetStatus("A-1", "fail")
	assert.Equal(t, report.StatusFail, v.Status("A-1"))
	assert.Equal(t, "Fail", v.Get("A-1_status"))

	v.Set(FieldTesterName, "  Sara ")
	assert.Equal(t, "Sara", v.Tester().Name)

	cp := v.Clone()
	v.SetStatus("A-1", report.StatusUnset)
	assert.Equal(t, report.StatusUnset, v.Status("A-1"))
	assert.Equal(t, report.StatusFail, cp.Status("A-1"))
	assert.NotContains(t, v, "A-1_status", "an empty value removes the field")
}
