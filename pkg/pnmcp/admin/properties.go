package admin

import (
	"encoding/json"
	"strconv"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/models"
)

// v1 flat property names.
const (
	propName                  = "name"
	propMessageStorage        = "message_storage"
	propMessageStorageTTL     = "message_storage_ttl"
	propMessageStorageDelete  = "message_storage_delete"
	propObjects               = "objects"
	propObjectsRegion         = "objects_region"
	propObjectsUserEvents     = "objects_user_events"
	propObjectsChannelEvents  = "objects_channel_events"
	propObjectsMembership     = "objects_membership_events"
	propFiles                 = "files"
	propFilesRegion           = "files_region"
	propFilesTTL              = "files_ttl"
	propPresence              = "presence"
	propPresenceAnnounceMax   = "presence_announce_max"
	propPresenceInterval      = "presence_interval"
	propPresenceDeltas        = "presence_deltas"
	propPresenceLeave         = "presence_leave_on_disconnect"
	propPresenceFiltering     = "presence_stream_filtering"
	propPresenceGlobalHereNow = "presence_global_here_now"
	propPresenceDebounce      = "presence_debounce"
)

// toProperties flattens cfg into the v1 property bag. Blocks left nil are
// skipped and unset optional fields are not forwarded.
func toProperties(cfg models.KeysetConfig) map[string]any {
	props := map[string]any{}

	if mp := cfg.MessagePersistence; mp != nil {
		props[propMessageStorage] = flag(mp.Enabled)
		putInt(props, propMessageStorageTTL, mp.Retention)
		putFlag(props, propMessageStorageDelete, mp.DeleteFromHistory)
	}

	if ac := cfg.AppContext; ac != nil {
		props[propObjects] = flag(ac.Enabled)
		if ac.Region != "" {
			props[propObjectsRegion] = ac.Region
		}
		putFlag(props, propObjectsUserEvents, ac.UserMetadataEvents)
		putFlag(props, propObjectsChannelEvents, ac.ChannelMetadataEvents)
		putFlag(props, propObjectsMembership, ac.MembershipEvents)
	}

	if f := cfg.Files; f != nil {
		props[propFiles] = flag(f.Enabled)
		if f.Region != "" {
			props[propFilesRegion] = f.Region
		}
		putInt(props, propFilesTTL, f.Retention)
	}

	if p := cfg.Presence; p != nil {
		props[propPresence] = flag(p.Enabled)
		putInt(props, propPresenceAnnounceMax, p.AnnounceMax)
		putInt(props, propPresenceInterval, p.Interval)
		putFlag(props, propPresenceDeltas, p.Deltas)
		putFlag(props, propPresenceLeave, p.GenerateLeaveOnDisconnect)
		putFlag(props, propPresenceFiltering, p.StreamFiltering)
		putFlag(props, propPresenceGlobalHereNow, p.GlobalHereNow)
		putInt(props, propPresenceDebounce, p.Debounce)
	}

	return props
}

// fromProperties rebuilds the canonical configuration. A block is produced
// when any of its properties is present; a missing enable flag reads as
// disabled.
func fromProperties(props map[string]any) *models.KeysetConfig {
	cfg := &models.KeysetConfig{}

	if anyPresent(props, propMessageStorage, propMessageStorageTTL, propMessageStorageDelete) {
		cfg.MessagePersistence = &models.MessagePersistence{
			Enabled:           enabled(props, propMessageStorage),
			Retention:         getInt(props, propMessageStorageTTL),
			DeleteFromHistory: flagOrNil(props, propMessageStorageDelete),
		}
	}

	if anyPresent(props, propObjects, propObjectsRegion, propObjectsUserEvents, propObjectsChannelEvents, propObjectsMembership) {
		cfg.AppContext = &models.AppContext{
			Enabled:               enabled(props, propObjects),
			Region:                getString(props, propObjectsRegion),
			UserMetadataEvents:    flagOrNil(props, propObjectsUserEvents),
			ChannelMetadataEvents: flagOrNil(props, propObjectsChannelEvents),
			MembershipEvents:      flagOrNil(props, propObjectsMembership),
		}
	}

	if anyPresent(props, propFiles, propFilesRegion, propFilesTTL) {
		cfg.Files = &models.Files{
			Enabled:   enabled(props, propFiles),
			Region:    getString(props, propFilesRegion),
			Retention: getInt(props, propFilesTTL),
		}
	}

	if anyPresent(props, propPresence, propPresenceAnnounceMax, propPresenceInterval, propPresenceDeltas,
		propPresenceLeave, propPresenceFiltering, propPresenceGlobalHereNow, propPresenceDebounce) {
		cfg.Presence = &models.Presence{
			Enabled:                   enabled(props, propPresence),
			AnnounceMax:               getInt(props, propPresenceAnnounceMax),
			Interval:                  getInt(props, propPresenceInterval),
			Deltas:                    flagOrNil(props, propPresenceDeltas),
			GenerateLeaveOnDisconnect: flagOrNil(props, propPresenceLeave),
			StreamFiltering:           flagOrNil(props, propPresenceFiltering),
			GlobalHereNow:             flagOrNil(props, propPresenceGlobalHereNow),
			Debounce:                  getInt(props, propPresenceDebounce),
		}
	}

	if cfg.Empty() {
		return nil
	}

	return cfg
}

func flag(b bool) int {
	if b {
		return 1
	}

	return 0
}

func putFlag(props map[string]any, key string, v *bool) {
	if v != nil {
		props[key] = flag(*v)
	}
}

func putInt(props map[string]any, key string, v *int) {
	if v != nil {
		props[key] = *v
	}
}

func getInt(props map[string]any, key string) *int {
	switch v := props[key].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		return &v
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil {
			return &n
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return &n
		}
	}

	return nil
}

func getFlag(props map[string]any, key string) (*bool, bool) {
	switch v := props[key].(type) {
	case bool:
		return &v, true
	case nil:
		return nil, false
	}

	n := getInt(props, key)
	if n == nil {
		return nil, false
	}
	on := *n != 0

	return &on, true
}

func enabled(props map[string]any, key string) bool {
	on, _ := getFlag(props, key)

	return on != nil && *on
}

func anyPresent(props map[string]any, keys ...string) bool {
	for _, k := range keys {
		if v, ok := props[k]; ok && v != nil {
			return true
		}
	}

	return false
}

func flagOrNil(props map[string]any, key string) *bool {
	v, _ := getFlag(props, key)

	return v
}

func getString(props map[string]any, key string) string {
	s, _ := props[key].(string)

	return s
}

// flexID accepts ids encoded either as JSON numbers or strings.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = flexID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexID(n.String())

	return nil
}
