package fota

import "context"

// Dispatcher assigns a firmware to a cohort of devices.
type Dispatcher struct {
	store Store
}

// NewDispatcher creates a Dispatcher over store.
func NewDispatcher(store Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// InitiateUpdate marks every listed device pending against firmwareName and
// returns how many devices were touched. Unknown device ids are ignored. A
// pending firmware already assigned to a device is overwritten: the last
// initiate wins.
func (d *Dispatcher) InitiateUpdate(ctx context.Context, deviceIDs []string, firmwareName string) (int64, error) {
	ids := uniqueIDs(deviceIDs)
	if len(ids) == 0 || firmwareName == "" {
		return 0, &ValidationError{Message: "Device IDs and firmware name are required"}
	}

	ok, err := d.store.FirmwareExists(ctx, firmwareName)
	if err != nil {
		return 0, storeErr("firmware lookup", err)
	}
	if !ok {
		return 0, &NotFoundError{Entity: "firmware"}
	}

	n, err := d.store.MarkDevicesPending(ctx, ids, firmwareName)
	if err != nil {
		return 0, storeErr("mark pending", err)
	}
	return n, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
