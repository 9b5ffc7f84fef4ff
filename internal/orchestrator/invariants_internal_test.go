package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debtmap/debtmap/pkg/callgraph"
	"github.com/debtmap/debtmap/pkg/diagnostics"
	"github.com/debtmap/debtmap/pkg/funcid"
)

// checkInvariants is exercised directly here rather than through Run,
// because merge and resolve only ever call AddFunction/AddEdge in ways the
// Graph itself refuses to violate (AddFunction is idempotent on ExactKey,
// AddEdge requires both endpoints to already exist) -- so a real pipeline
// run can never actually produce a DanglingEdges or Duplicates report. This
// path exists to guard against a future bug in merge/resolve reintroducing
// one of those conditions.
func TestCheckInvariants_DanglingEdgeAborts(t *testing.T) {
	t.Parallel()

	o := &Orchestrator{diagnostics: diagnostics.NewStream()}

	report := callgraph.ValidationReport{
		DanglingEdges: []callgraph.DanglingEdgeIssue{{
			Call: callgraph.FunctionCall{
				Caller: funcid.FunctionId{File: "a.rs", Name: "caller", Line: 1},
				Callee: funcid.FunctionId{File: "a.rs", Name: "missing", Line: 2},
			},
		}},
	}

	err := o.checkInvariants(report)
	require.Error(t, err)
}

func TestCheckInvariants_DuplicateNodeAborts(t *testing.T) {
	t.Parallel()

	o := &Orchestrator{diagnostics: diagnostics.NewStream()}

	report := callgraph.ValidationReport{
		Duplicates: []callgraph.DuplicateNodeIssue{{
			ID: funcid.FunctionId{File: "a.rs", Name: "dup", Line: 1},
		}},
	}

	err := o.checkInvariants(report)
	require.Error(t, err)
}

func TestCheckInvariants_CleanReportPasses(t *testing.T) {
	t.Parallel()

	o := &Orchestrator{diagnostics: diagnostics.NewStream()}

	err := o.checkInvariants(callgraph.ValidationReport{})
	assert.NoError(t, err)
}
