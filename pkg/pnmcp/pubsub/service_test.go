package pubsub_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/credentials"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/internal/testutil"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/ports"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/pubsub"
)

var envKeys = credentials.Env{
	credentials.EnvPublishKey:   "pub-env",
	credentials.EnvSubscribeKey: "sub-env",
}

func newService(env credentials.Env, client *testutil.MockPubSub) (*pubsub.Service, *testutil.MockFactory) {
	factory := &testutil.MockFactory{PubSub: client}

	return pubsub.NewService(credentials.NewResolver(env), factory, nil), factory
}

func TestSendSignalUsesSignalPathOnly(t *testing.T) {
	client := &testutil.MockPubSub{}
	svc, factory := newService(envKeys, client)

	res, err := svc.Send(context.Background(), pubsub.SendRequest{
		Channel: "c",
		Message: "hi",
		Type:    pubsub.TypeSignal,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Signal"}, client.Calls())
	assert.Equal(t, pubsub.TypeSignal, res.Type)
	assert.Equal(t, "17000000000000001", res.Timetoken)
	assert.Equal(t, []credentials.Pair{{PublishKey: "pub-env", SubscribeKey: "sub-env"}}, factory.Keys())
}

func TestSendDefaultsToPublish(t *testing.T) {
	var gotMessage any
	client := &testutil.MockPubSub{
		PublishFunc: func(_ context.Context, channel string, message any) (string, error) {
			gotMessage = message

			return "1", nil
		},
	}
	svc, _ := newService(envKeys, client)

	res, err := svc.Send(context.Background(), pubsub.SendRequest{
		Channel: "c",
		Message: map[string]any{"text": "hi"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Publish"}, client.Calls())
	assert.Equal(t, pubsub.TypeMessage, res.Type)
	assert.Equal(t, map[string]any{"text": "hi"}, gotMessage)
}

func TestEnvKeysWinOverArguments(t *testing.T) {
	svc, factory := newService(envKeys, &testutil.MockPubSub{})

	_, err := svc.Send(context.Background(), pubsub.SendRequest{
		Pair:    credentials.Pair{PublishKey: "pub-arg", SubscribeKey: "sub-arg"},
		Channel: "c",
		Message: "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "pub-env", factory.Keys()[0].PublishKey)
}

func TestMissingKeysFailBeforeAnyCall(t *testing.T) {
	client := &testutil.MockPubSub{}
	svc, factory := newService(credentials.Env{}, client)

	_, err := svc.Send(context.Background(), pubsub.SendRequest{
		Pair:    credentials.Pair{PublishKey: "pub-arg"},
		Channel: "c",
		Message: "hi",
	})
	require.Error(t, err)
	assert.True(t, pnerrs.IsConfigurationError(err))
	assert.Empty(t, factory.Keys())
	assert.Empty(t, client.Calls())
}

func TestPresence(t *testing.T) {
	t.Run("uuid only runs where now", func(t *testing.T) {
		client := &testutil.MockPubSub{
			WhereNowFunc: func(_ context.Context, uuid string) ([]string, error) {
				return []string{"a", "b"}, nil
			},
		}
		svc, _ := newService(envKeys, client)

		res, err := svc.Presence(context.Background(), pubsub.PresenceRequest{
			Channels:      []string{},
			ChannelGroups: []string{},
			UUID:          "u",
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"WhereNow"}, client.Calls())
		assert.Nil(t, res.HereNow)
		require.NotNil(t, res.WhereNow)
		assert.Equal(t, []string{"a", "b"}, res.WhereNow.Channels)
	})

	t.Run("channels only runs here now", func(t *testing.T) {
		client := &testutil.MockPubSub{
			HereNowFunc: func(_ context.Context, req ports.HereNowRequest) (*ports.HereNowResult, error) {
				assert.Equal(t, []string{"lobby"}, req.Channels)

				return &ports.HereNowResult{TotalChannels: 1, TotalOccupancy: 2}, nil
			},
		}
		svc, _ := newService(envKeys, client)

		res, err := svc.Presence(context.Background(), pubsub.PresenceRequest{Channels: []string{"lobby"}})
		require.NoError(t, err)

		assert.Equal(t, []string{"HereNow"}, client.Calls())
		assert.Equal(t, 2, res.HereNow.TotalOccupancy)
		assert.Nil(t, res.WhereNow)
	})

	t.Run("both", func(t *testing.T) {
		client := &testutil.MockPubSub{}
		svc, _ := newService(envKeys, client)

		_, err := svc.Presence(context.Background(), pubsub.PresenceRequest{
			ChannelGroups: []string{"g"},
			UUID:          "u",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"HereNow", "WhereNow"}, client.Calls())
	})
}

func TestHistoryPassesRequest(t *testing.T) {
	client := &testutil.MockPubSub{
		FetchFunc: func(_ context.Context, req ports.FetchRequest) (map[string][]ports.HistoryMessage, error) {
			assert.Equal(t, 25, req.Count)
			assert.Equal(t, "100", req.Start)

			return map[string][]ports.HistoryMessage{
				"a": {{Message: "x", Timetoken: "99"}},
			}, nil
		},
	}
	svc, _ := newService(envKeys, client)

	res, err := svc.History(context.Background(), pubsub.HistoryRequest{Channels: []string{"a"}, Start: "100"})
	require.NoError(t, err)
	require.Len(t, res.Channels["a"], 1)
	assert.Equal(t, "99", res.Channels["a"][0].Timetoken)
}

func TestUpstreamErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	client := &testutil.MockPubSub{
		PublishFunc: func(context.Context, string, any) (string, error) { return "", boom },
	}
	svc, _ := newService(envKeys, client)

	_, err := svc.Send(context.Background(), pubsub.SendRequest{Channel: "c", Message: "hi"})
	assert.ErrorIs(t, err, boom)
}

func TestAppContextMembershipVariant(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantSide ports.MembershipSide
		wantIDs  []string
	}{
		{
			name:     "channels of a user",
			raw:      `{"type":"membership","operation":"set","id":"u1","data":{"channels":["a",{"id":"b","custom":{"role":"admin"}}]}}`,
			wantSide: ports.MembershipsOfUser,
			wantIDs:  []string{"a", "b"},
		},
		{
			name:     "users of a channel",
			raw:      `{"type":"membership","operation":"remove","id":"c1","data":{"uuids":["u1"]}}`,
			wantSide: ports.MembersOfChannel,
			wantIDs:  []string{"u1"},
		},
		{
			name:     "members listing",
			raw:      `{"type":"membership","operation":"get","id":"c1","options":{"members":true,"limit":10}}`,
			wantSide: ports.MembersOfChannel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ports.ObjectsRequest
			client := &testutil.MockPubSub{
				ObjectsFunc: func(_ context.Context, req ports.ObjectsRequest) (any, error) {
					got = req

					return map[string]any{"status": 200}, nil
				},
			}
			svc, _ := newService(envKeys, client)

			var req pubsub.AppContextRequest
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &req))

			_, err := svc.AppContext(context.Background(), req)
			require.NoError(t, err)

			assert.Equal(t, ports.ObjectMembership, got.Kind)
			assert.Equal(t, tt.wantSide, got.Side)

			ids := []string(nil)
			for _, e := range got.Entries {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestMembershipRefRejectsObjectWithoutID(t *testing.T) {
	var ref pubsub.MembershipRef
	assert.Error(t, json.Unmarshal([]byte(`{"custom":{}}`), &ref))
	assert.Error(t, json.Unmarshal([]byte(`42`), &ref))
}

func subscribing(sub *testutil.MockSubscription) *testutil.MockPubSub {
	return &testutil.MockPubSub{
		SubscribeFunc: func(context.Context, string) (ports.Subscription, error) {
			return sub, nil
		},
	}
}

func TestSubscribeTimesOutWithPartialResult(t *testing.T) {
	sub := testutil.NewMockSubscription(4)
	sub.Ch <- ports.Message{Channel: "c", Timetoken: "1", Message: "first"}
	svc, _ := newService(envKeys, subscribing(sub))

	start := time.Now()
	res, err := svc.SubscribeAndReceive(context.Background(), pubsub.SubscribeRequest{
		Channel:      "c",
		MessageCount: 2,
		Timeout:      1,
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), time.Second)
	assert.Equal(t, 1, res.MessageCount)
	assert.Len(t, res.Messages, 1)
	assert.Contains(t, res.Note, "Only 1 of 2")
	assert.Contains(t, res.Note, "within 1s")
	assert.Equal(t, 1, sub.RemoveListenerCalls())
	assert.Equal(t, 1, sub.UnsubscribeCalls())
}

func TestSubscribeReturnsWhenCountReached(t *testing.T) {
	sub := testutil.NewMockSubscription(4)
	sub.Ch <- ports.Message{Channel: "c", Message: "a"}
	sub.Ch <- ports.Message{Channel: "c", Message: "b"}
	svc, _ := newService(envKeys, subscribing(sub))

	res, err := svc.SubscribeAndReceive(context.Background(), pubsub.SubscribeRequest{
		Channel:      "c",
		MessageCount: 2,
		Timeout:      30,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.MessageCount)
	assert.Empty(t, res.Note)
	assert.Equal(t, 1, sub.RemoveListenerCalls())
	assert.Equal(t, 1, sub.UnsubscribeCalls())
}

func TestSubscribeHugeCountReturnsPartial(t *testing.T) {
	sub := testutil.NewMockSubscription(1)
	sub.Ch <- ports.Message{Channel: "c", Message: "only"}
	svc, _ := newService(envKeys, subscribing(sub))

	res, err := svc.SubscribeAndReceive(context.Background(), pubsub.SubscribeRequest{
		Channel:      "c",
		MessageCount: 1 << 40,
		Timeout:      0,
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, res.MessageCount, 1)
	assert.Contains(t, res.Note, "of 1099511627776 expected")
	assert.Equal(t, 1, sub.RemoveListenerCalls())
	assert.Equal(t, 1, sub.UnsubscribeCalls())
}

func TestSubscribeHonoursCancellation(t *testing.T) {
	sub := testutil.NewMockSubscription(0)
	svc, _ := newService(envKeys, subscribing(sub))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.SubscribeAndReceive(ctx, pubsub.SubscribeRequest{
		Channel:      "c",
		MessageCount: 1,
		Timeout:      30,
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, sub.RemoveListenerCalls())
	assert.Equal(t, 1, sub.UnsubscribeCalls())
}

func TestSubscribeFailureSkipsCleanup(t *testing.T) {
	client := &testutil.MockPubSub{
		SubscribeFunc: func(context.Context, string) (ports.Subscription, error) {
			return nil, errors.New("offline")
		},
	}
	svc, _ := newService(envKeys, client)

	_, err := svc.SubscribeAndReceive(context.Background(), pubsub.SubscribeRequest{Channel: "c", MessageCount: 1})
	assert.Error(t, err)
}
