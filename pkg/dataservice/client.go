package dataservice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kolo/xmlrpc"

	"roomgrid/pkg/model"
)

// Client is the remote data service consumed by the calendar. Persistence
// lives entirely behind it; the engine only holds the in-memory dataset.
type Client interface {
	FetchCalendarData(ctx context.Context, rangeStart, rangeEnd time.Time) (*model.CalendarData, error)
	PersistReservationChange(ctx context.Context, ids []string, fieldChanges map[string]any) error
	SwapReservations(ctx context.Context, fromIDs, toIDs []string) error
	SplitReservation(ctx context.Context, id string, nightOffset int) error
	UnifyReservations(ctx context.Context, ids []string) error
	SaveManagementChanges(ctx context.Context, prices []model.PriceRecord, restrictions []model.RestrictionRecord, avails []model.AvailabilityRecord) error
}

// RPCClient talks XML-RPC to the backend, one transient connection per
// call.
type RPCClient struct {
	URL      string
	Database string
	Username string
	Password string
	Timeout  time.Duration

	uid int
}

func NewRPCClient(url, db, username, password string, timeout time.Duration) *RPCClient {
	return &RPCClient{
		URL:      url,
		Database: db,
		Username: username,
		Password: password,
		Timeout:  timeout,
	}
}

func (c *RPCClient) endpoint(path string) string {
	return fmt.Sprintf("%s/xmlrpc/2/%s", c.URL, path)
}

// Authenticate resolves the backend user id used by subsequent calls.
func (c *RPCClient) Authenticate(ctx context.Context) error {
	client, err := xmlrpc.NewClient(c.endpoint("common"), nil)
	if err != nil {
		return fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	args := []interface{}{c.Database, c.Username, c.Password, map[string]interface{}{}}
	var uid int
	if err := client.Call("authenticate", args, &uid); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	c.uid = uid
	return nil
}

// execute runs a named calendar method with positional args, decoding the
// raw reply into result through a JSON round-trip.
func (c *RPCClient) execute(method string, params []interface{}, result interface{}) error {
	client, err := xmlrpc.NewClient(c.endpoint("object"), nil)
	if err != nil {
		return fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	args := []interface{}{
		c.Database,
		c.uid,
		c.Password,
		"hotel.calendar",
		method,
		params,
	}

	if result == nil {
		var ack bool
		return client.Call("execute_kw", args, &ack)
	}

	var raw interface{}
	if err := client.Call("execute_kw", args, &raw); err != nil {
		return fmt.Errorf("failed to execute %s: %w", method, err)
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal raw result: %w", err)
	}
	if err := json.Unmarshal(jsonData, result); err != nil {
		return fmt.Errorf("failed to unmarshal into target: %w", err)
	}
	return nil
}

func (c *RPCClient) FetchCalendarData(ctx context.Context, rangeStart, rangeEnd time.Time) (*model.CalendarData, error) {
	var data model.CalendarData
	params := []interface{}{model.DayKey(rangeStart), model.DayKey(rangeEnd)}
	if err := c.execute("fetch_calendar_data", params, &data); err != nil {
		return nil, err
	}
	if data.Pricelist == nil {
		data.Pricelist = make(model.Pricelist)
	}
	return &data, nil
}

func (c *RPCClient) PersistReservationChange(ctx context.Context, ids []string, fieldChanges map[string]any) error {
	return c.execute("persist_reservation_change", []interface{}{ids, fieldChanges}, nil)
}

func (c *RPCClient) SwapReservations(ctx context.Context, fromIDs, toIDs []string) error {
	return c.execute("swap_reservations", []interface{}{fromIDs, toIDs}, nil)
}

func (c *RPCClient) SplitReservation(ctx context.Context, id string, nightOffset int) error {
	return c.execute("split_reservation", []interface{}{id, nightOffset}, nil)
}

func (c *RPCClient) UnifyReservations(ctx context.Context, ids []string) error {
	return c.execute("unify_reservations", []interface{}{ids}, nil)
}

func (c *RPCClient) SaveManagementChanges(ctx context.Context, prices []model.PriceRecord, restrictions []model.RestrictionRecord, avails []model.AvailabilityRecord) error {
	params := []interface{}{prices, restrictions, avails}
	return c.execute("save_management_changes", params, nil)
}
