package joborder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionFrom_ApprovalChainWalksInOrder(t *testing.T) {
	cases := []struct {
		from      Stage
		next      Stage
		status    Status
		nextActor ActorRule
	}{
		{StageFirstApproval, StageSecondApproval, StatusRouting, ActorConfiguredApprover},
		{StageSecondApproval, StageThirdApproval, StatusRouting, ActorConfiguredApprover},
		{StageThirdApproval, StageFinalApproval, StatusRouting, ActorConfiguredApprover},
		{StageFinalApproval, StageFacilitation, StatusRouting, ActorFacilitator},
		{StageFacilitation, StageExecution, StatusRouting, ActorAssignedInCharge},
		{StageExecution, StageChecking, StatusCompleted, ActorConfiguredChecker},
		{StageChecking, StageClosure, StatusChecked, ActorRequester},
		{StageClosure, StageClosure, StatusClosed, ActorNone},
	}
	for _, tc := range cases {
		t.Run(tc.from.String(), func(t *testing.T) {
			transition, ok := TransitionFrom(tc.from)
			require.True(t, ok)
			require.Equal(t, tc.next, transition.Next)
			require.Equal(t, tc.status, transition.Status)
			require.Equal(t, tc.nextActor, transition.NextActor)
		})
	}
}

func TestTransitionFrom_SubmittedHasNoGenericTransition(t *testing.T) {
	_, ok := TransitionFrom(StageSubmitted)
	require.False(t, ok)
}

func TestCanAdvanceGenerically_DedicatedStagesExcluded(t *testing.T) {
	require.True(t, StageFirstApproval.CanAdvanceGenerically())
	require.True(t, StageFinalApproval.CanAdvanceGenerically())
	require.True(t, StageChecking.CanAdvanceGenerically())

	require.False(t, StageSubmitted.CanAdvanceGenerically())
	require.False(t, StageFacilitation.CanAdvanceGenerically())
	require.False(t, StageExecution.CanAdvanceGenerically())
	require.False(t, StageClosure.CanAdvanceGenerically())
}

func TestStatusIsTerminal(t *testing.T) {
	require.True(t, StatusClosed.IsTerminal())
	require.True(t, StatusCancelled.IsTerminal())
	require.True(t, StatusRejected.IsTerminal())

	require.False(t, StatusRouting.IsTerminal())
	require.False(t, StatusCompleted.IsTerminal())
	require.False(t, StatusChecked.IsTerminal())
}

func TestCategoryControlPrefix(t *testing.T) {
	require.Equal(t, "G", CategoryGreen.ControlPrefix())
	require.Equal(t, "Y", CategoryYellow.ControlPrefix())
	require.Equal(t, "W", CategoryWhite.ControlPrefix())
	require.Equal(t, "O", CategoryOrange.ControlPrefix())
	require.False(t, Category("Purple").Valid())
}
