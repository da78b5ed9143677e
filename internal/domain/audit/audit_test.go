package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildQueryNoFilter(t *testing.T) {
	query, args := buildQuery("SELECT COUNT(1)", Filter{})
	require.Equal(t, "SELECT COUNT(1) FROM audit_events WHERE 1=1", query)
	require.Empty(t, args)
}

func TestBuildQueryNumbersPlaceholdersInOrder(t *testing.T) {
	query, args := buildQuery("SELECT id", Filter{Action: ActionStatusChanged, ActorUser: "u-1", EntityID: "42"})
	require.Equal(t, "SELECT id FROM audit_events WHERE 1=1 AND action = $1 AND actor_user_id = $2 AND entity_id = $3", query)
	require.Equal(t, []any{ActionStatusChanged, "u-1", "42"}, args)
}

func TestRecordWithoutDatabaseIsNoop(t *testing.T) {
	var svc *Service
	require.NoError(t, svc.Record(context.Background(), Entry{Action: ActionRequestCreated}))
	require.NoError(t, New(nil).Record(context.Background(), Entry{Action: ActionRequestCreated}))
}

func TestMarshalOptional(t *testing.T) {
	raw, err := marshalOptional(nil)
	require.NoError(t, err)
	require.Nil(t, raw)

	raw, err = marshalOptional(map[string]string{"status": "Approved"})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"Approved"}`, string(raw))

	_, err = marshalOptional(func() {})
	require.Error(t, err)
}
