package ui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/stockroom/internal/api"
	"github.com/abelbrown/stockroom/internal/bulk"
	"github.com/abelbrown/stockroom/internal/journal"
	"github.com/abelbrown/stockroom/internal/resource"
	"github.com/abelbrown/stockroom/internal/session"
)

// collect runs cmd and any batched commands, dropping spinner ticks.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case spinner.TickMsg:
		return nil
	}
	return []tea.Msg{msg}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func typeText(t *testing.T, v TableView[resource.User], s string) TableView[resource.User] {
	t.Helper()
	for _, r := range s {
		v, _ = v.update(keyRune(r))
	}
	return v
}

func someUsers() []resource.User {
	return []resource.User{
		{ID: 1, Name: "Bob", Email: "bob@x.test"},
		{ID: 2, Name: "ann", Email: "ann@x.test"},
		{ID: 3, Name: "Ann", Email: "ann2@x.test"},
	}
}

// fakeBackend serves users from memory.
type fakeBackend struct {
	users       []resource.User
	deleteErr   error
	deleted     []string
	failFetches int // fail this many fetches before serving again
}

func (f *fakeBackend) FetchCollection(context.Context, string, string) ([]json.RawMessage, error) {
	if f.failFetches > 0 {
		f.failFetches--
		return nil, &api.NetworkError{Status: 502}
	}
	out := make([]json.RawMessage, len(f.users))
	for i, u := range f.users {
		out[i], _ = json.Marshal(u)
	}
	return out, nil
}

func (f *fakeBackend) CSRFToken(context.Context) (string, error) { return "t", nil }

func (f *fakeBackend) BatchDelete(_ context.Context, _ string, ids []string, _ string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = ids
	var keep []resource.User
	for _, u := range f.users {
		drop := false
		for _, id := range ids {
			if resource.Users.Schema.ID(u) == id {
				drop = true
			}
		}
		if !drop {
			keep = append(keep, u)
		}
	}
	f.users = keep
	return nil
}

type memSaver struct{ data string }

func (m *memSaver) Save(_ string, data []byte) (string, error) {
	m.data = string(data)
	return "memory", nil
}

func newUserView(backend *fakeBackend, saver bulk.Saver) TableView[resource.User] {
	desc := resource.Users
	return NewTableView(context.Background(), ViewConfig[resource.User]{
		Resource: desc,
		PageSize: 2,
		Load: func(ctx context.Context) ([]resource.User, error) {
			return resource.Fetch(ctx, backend, desc)
		},
		Dispatcher: &bulk.Dispatcher[resource.User]{Resource: desc, Backend: backend, Saver: saver},
	})
}

// started starts v and applies the initial load.
func started(t *testing.T, v TableView[resource.User]) TableView[resource.User] {
	t.Helper()
	s, cmd := v.Start()
	v = s.(TableView[resource.User])
	for _, msg := range collect(cmd) {
		v, _ = v.update(msg)
	}
	if v.Loading() {
		t.Fatal("still loading after initial fetch")
	}
	return v
}

func TestTableViewInitialLoad(t *testing.T) {
	v := started(t, newUserView(&fakeBackend{users: someUsers()}, nil))

	info := v.Controller().Info()
	if info.Total != 3 || info.TotalPages != 2 {
		t.Errorf("info = %+v", info)
	}
	if !strings.Contains(v.View(), "page 1 / 2") {
		t.Errorf("status bar missing page indicator:\n%s", v.View())
	}
}

func TestTableViewDropsStaleResponse(t *testing.T) {
	v := newUserView(&fakeBackend{users: someUsers()}, nil)
	s, first := v.Start()
	v = s.(TableView[resource.User])
	v, second := v.update(keyRune('r'))

	firstMsgs, secondMsgs := collect(first), collect(second)

	// The newer response lands first, then the older one arrives late.
	late := firstMsgs[0].(CollectionLoaded[resource.User])
	late.Records = []resource.User{{ID: 99, Name: "stale"}}
	v, _ = v.update(secondMsgs[0])
	v, _ = v.update(late)

	if got := v.Controller().Info().Total; got != 3 {
		t.Fatalf("stale response applied: total = %d", got)
	}
	for _, r := range v.Controller().Records() {
		if r.ID == 99 {
			t.Fatal("stale record present")
		}
	}
}

func TestTableViewFailedLoadShowsBanner(t *testing.T) {
	v := started(t, newUserView(&fakeBackend{users: someUsers()}, nil))

	v, _ = v.update(CollectionLoaded[resource.User]{Screen: "users", Seq: 5, Err: &api.NetworkError{Op: "GET /users/", Status: 502}})
	if v.Err() == nil {
		t.Fatal("expected error banner")
	}
	if v.Controller().Info().Total != 0 {
		t.Error("failed load must not keep old rows")
	}
	if !strings.Contains(v.View(), "server error (502)") {
		t.Errorf("banner missing:\n%s", v.View())
	}
}

func TestTableViewFilterClampsPage(t *testing.T) {
	v := started(t, newUserView(&fakeBackend{users: someUsers()}, nil))
	v, _ = v.update(keyRune('n'))
	if v.Controller().Info().Page != 2 {
		t.Fatalf("page = %d, want 2", v.Controller().Info().Page)
	}

	v, _ = v.update(keyRune('/'))
	if !v.Capturing() {
		t.Fatal("filter mode should capture keys")
	}
	v = typeText(t, v, "bob")
	v, _ = v.update(tea.KeyMsg{Type: tea.KeyEnter})

	info := v.Controller().Info()
	if v.Capturing() || v.Controller().Query() != "bob" {
		t.Errorf("query = %q capturing = %v", v.Controller().Query(), v.Capturing())
	}
	if info.Page != 1 || info.TotalPages != 1 || info.Filtered != 1 {
		t.Errorf("info after filter = %+v", info)
	}

	v, _ = v.update(keyRune('/'))
	v, _ = v.update(tea.KeyMsg{Type: tea.KeyEsc})
	if v.Controller().Query() != "" {
		t.Errorf("esc should clear the query, got %q", v.Controller().Query())
	}
}

func TestTableViewSortKeys(t *testing.T) {
	v := started(t, newUserView(&fakeBackend{users: someUsers()}, nil))

	v, _ = v.update(keyRune('s'))
	if d := v.Controller().Sort(); d.Column != "id" {
		t.Fatalf("first sort column = %q, want id", d.Column)
	}
	v, _ = v.update(keyRune('s'))
	if d := v.Controller().Sort(); d.Column != "name" {
		t.Fatalf("second sort column = %q, want name", d.Column)
	}
	v, _ = v.update(keyRune('S'))
	d := v.Controller().Sort()
	if d.Column != "name" || d.Direction.String() != "desc" {
		t.Errorf("after flip = %+v", d)
	}
	if got := v.Controller().Visible()[0].Name; got != "Bob" {
		t.Errorf("first row after name desc = %q, want Bob", got)
	}
}

func TestTableViewExport(t *testing.T) {
	saver := &memSaver{}
	v := started(t, newUserView(&fakeBackend{users: someUsers()}, saver))

	v, cmd := v.update(keyRune('x'))
	if cmd != nil || v.Notice() != "nothing selected" {
		t.Fatalf("export with empty selection: notice %q", v.Notice())
	}

	v, _ = v.update(keyRune('a'))
	v, cmd = v.update(keyRune('x'))
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %v", msgs)
	}
	v, _ = v.update(msgs[0])

	if !strings.HasPrefix(saver.data, "id,name,email,role,department,active\n") {
		t.Errorf("csv = %q", saver.data)
	}
	if strings.Count(saver.data, "\n") != 4 {
		t.Errorf("expected header plus 3 rows, got %q", saver.data)
	}
	if v.Notice() != "exported 3 rows to memory" {
		t.Errorf("notice = %q", v.Notice())
	}
}

func TestTableViewDeleteFlow(t *testing.T) {
	backend := &fakeBackend{users: someUsers()}
	v := started(t, newUserView(backend, nil))

	v, _ = v.update(keyRune(' ')) // select row 1 (Bob)
	if v.Controller().SelectedCount() != 1 {
		t.Fatalf("selected = %d", v.Controller().SelectedCount())
	}

	v, _ = v.update(keyRune('d'))
	if !v.Capturing() || !strings.Contains(v.View(), "Delete 1 users? (y/n)") {
		t.Fatalf("expected confirmation prompt:\n%s", v.View())
	}

	v, cmd := v.update(keyRune('y'))
	if !v.Deleting() {
		t.Fatal("expected delete in flight")
	}
	// A second delete is ignored while the first is running.
	v, again := v.update(keyRune('d'))
	if again != nil || v.Capturing() {
		t.Error("delete key should be disabled while deleting")
	}

	for _, msg := range collect(cmd) {
		v, _ = v.update(msg)
	}
	if v.Deleting() {
		t.Error("delete should have finished")
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != "1" {
		t.Errorf("deleted = %v", backend.deleted)
	}
	if got := v.Controller().Info().Total; got != 2 {
		t.Errorf("total after delete = %d, want 2", got)
	}
	if v.Controller().SelectedCount() != 0 || !v.Controller().Selection().IsEmpty() {
		t.Error("selection should be cleared after delete")
	}
}

func TestTableViewDeleteFailureKeepsSelection(t *testing.T) {
	backend := &fakeBackend{users: someUsers(), deleteErr: &api.ActionError{Action: "delete", Status: 500, Body: "locked"}}
	v := started(t, newUserView(backend, nil))

	v, _ = v.update(keyRune(' '))
	v, _ = v.update(keyRune('d'))
	v, cmd := v.update(keyRune('y'))
	for _, msg := range collect(cmd) {
		v, _ = v.update(msg)
	}

	var ae *api.ActionError
	if !errors.As(v.Err(), &ae) {
		t.Fatalf("err = %v, want ActionError", v.Err())
	}
	if v.Controller().SelectedCount() != 1 {
		t.Error("selection must survive a failed delete")
	}
	if v.Deleting() {
		t.Error("delete key should be re-enabled")
	}
}

func TestTableViewDeleteRefetchFailureClearsSelection(t *testing.T) {
	backend := &fakeBackend{users: someUsers()}
	v := started(t, newUserView(backend, nil))

	v, _ = v.update(keyRune('a'))
	if !v.Controller().Selection().IsAll() {
		t.Fatal("expected select-all")
	}
	v, _ = v.update(keyRune('d'))
	v, cmd := v.update(keyRune('y'))

	backend.failFetches = 1
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	v, followUp := v.update(msgs[0])
	if len(backend.deleted) != 3 {
		t.Fatalf("deleted = %v", backend.deleted)
	}
	if v.Err() == nil {
		t.Error("refetch failure should show a banner")
	}
	if !v.Controller().Selection().IsEmpty() {
		t.Error("selection must be cleared once the delete succeeded")
	}
	if followUp == nil || !v.Loading() {
		t.Fatal("expected a follow-up fetch")
	}

	// A record added meanwhile must not come back selected.
	backend.users = append(backend.users, resource.User{ID: 9, Name: "Nia", Email: "nia@x.test"})
	for _, msg := range collect(followUp) {
		v, _ = v.update(msg)
	}
	if v.Err() != nil {
		t.Errorf("err = %v after successful load", v.Err())
	}
	if got := v.Controller().Info().Total; got != 1 {
		t.Errorf("total = %d, want 1", got)
	}
	if v.Controller().IsSelected("9") || v.Controller().SelectedCount() != 0 {
		t.Error("new record 9 should not be selected")
	}
	if got := v.Controller().Resolve(); len(got) != 0 {
		t.Errorf("resolve = %v, want nothing", got)
	}
}

func TestTableViewDeclineDelete(t *testing.T) {
	backend := &fakeBackend{users: someUsers()}
	v := started(t, newUserView(backend, nil))

	v, _ = v.update(keyRune('a'))
	v, _ = v.update(keyRune('d'))
	v, cmd := v.update(keyRune('n'))
	if cmd != nil || v.Capturing() {
		t.Fatal("declining should return to browse without a command")
	}
	if backend.deleted != nil {
		t.Error("nothing should be deleted")
	}
	if v.Notice() != "delete cancelled" {
		t.Errorf("notice = %q", v.Notice())
	}
}

func TestTableViewPageSizeSaved(t *testing.T) {
	var saved int
	v := NewTableView(context.Background(), ViewConfig[resource.User]{
		Resource:     resource.Users,
		PageSize:     10,
		SavePageSize: func(n int) error { saved = n; return nil },
	})
	v.Controller().SetRecords(someUsers())

	v, cmd := v.update(keyRune('+'))
	if v.Controller().Info().PageSize != 20 {
		t.Fatalf("page size = %d, want 20", v.Controller().Info().PageSize)
	}
	collect(cmd)
	if saved != 20 {
		t.Errorf("saved = %d, want 20", saved)
	}
	v, _ = v.update(keyRune('-'))
	v, _ = v.update(keyRune('-'))
	if v.Controller().Info().PageSize != 5 {
		t.Errorf("page size = %d, want 5", v.Controller().Info().PageSize)
	}
}

func TestAppScreensForRole(t *testing.T) {
	profile := session.Profile{Name: "Dana", Role: session.RoleStaff}
	screens, err := BuildScreens(context.Background(), Deps{Backend: &fakeBackend{}}, profile)
	if err != nil {
		t.Fatal(err)
	}
	app := NewApp(profile, screens...)

	if app.Active() != resource.NameInventory {
		t.Errorf("active = %q", app.Active())
	}
	if app.Screen(resource.NameUsers) != nil {
		t.Error("staff must not see users")
	}

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = model.(App)
	if app.Active() != resource.NameTasks {
		t.Errorf("after tab active = %q", app.Active())
	}
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	app = model.(App)
	if app.Active() != resource.NameInventory {
		t.Errorf("after shift+tab active = %q", app.Active())
	}
}

func TestBuildScreensRejectsUnknownDepartment(t *testing.T) {
	_, err := BuildScreens(context.Background(), Deps{}, session.Profile{Role: session.RoleQA, Department: "kitchen"})
	if !errors.Is(err, resource.ErrUnknownDepartment) {
		t.Errorf("err = %v, want ErrUnknownDepartment", err)
	}
}

func TestAppRoutesAndQuits(t *testing.T) {
	backend := &fakeBackend{users: someUsers()}
	profile := session.Profile{Name: "Ada", Role: session.RoleAdmin}
	screens, err := BuildScreens(context.Background(), Deps{Backend: backend}, profile)
	if err != nil {
		t.Fatal(err)
	}
	app := NewApp(profile, screens...)

	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = model.(App)
	for _, msg := range collect(app.Init()) {
		model, cmd := app.Update(msg)
		app = model.(App)
		for _, m := range collect(cmd) {
			model, _ = app.Update(m)
			app = model.(App)
		}
	}
	if !strings.Contains(app.View(), "Ada · admin") {
		t.Errorf("header missing user badge:\n%s", app.View())
	}

	// A message for another screen goes to that screen only.
	model, _ = app.Update(CollectionLoaded[resource.User]{Screen: resource.NameUsers, Seq: 1, Records: someUsers()})
	app = model.(App)
	users := app.Screen(resource.NameUsers).(TableView[resource.User])
	if users.Controller().Info().Total != 3 {
		t.Errorf("users screen total = %d", users.Controller().Info().Total)
	}

	// q types into the filter instead of quitting.
	model, _ = app.Update(keyRune('/'))
	app = model.(App)
	_, cmd := app.Update(keyRune('q'))
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Fatal("q in filter mode must not quit")
		}
	}

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = model.(App)
	_, cmd = app.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestColumnWidths(t *testing.T) {
	titles := []string{"ID", "Name"}
	rows := [][]string{{"1", strings.Repeat("x", 50)}}

	w := columnWidths(titles, rows, 0)
	if w[0] != 2 || w[1] != maxColumnWidth {
		t.Errorf("unbounded widths = %v", w)
	}

	w = columnWidths(titles, rows, 20)
	if totalWidth(w) > 20-2*3-1 {
		t.Errorf("widths %v do not fit 20 columns", w)
	}
}

func TestAppActivityPane(t *testing.T) {
	profile := session.Profile{Name: "Ada", Role: session.RoleQA}
	screens, err := BuildScreens(context.Background(), Deps{Backend: &fakeBackend{}}, profile)
	if err != nil {
		t.Fatal(err)
	}
	ring := journal.NewRing(16)
	app := NewApp(profile, screens...).WithActivity(ring)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	app = model.(App)

	if strings.Contains(app.View(), "no activity yet") {
		t.Fatal("pane should start hidden")
	}
	model, _ = app.Update(keyRune('L'))
	app = model.(App)
	if !strings.Contains(app.View(), "no activity yet") {
		t.Fatalf("pane not shown:\n%s", app.View())
	}

	ring.Push(journal.Event{Kind: journal.KindDelete, Resource: resource.NameTasks, Count: 3})
	if !strings.Contains(app.View(), "bulk.delete") {
		t.Errorf("pane does not show the latest event:\n%s", app.View())
	}

	model, _ = app.Update(keyRune('L'))
	app = model.(App)
	if strings.Contains(app.View(), "bulk.delete") {
		t.Error("second L should hide the pane")
	}
}
