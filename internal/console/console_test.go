package console

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/client"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/querycache"
)

const validToken = "tok"

// fakeAPI serves the subset of the REST API the console talks to. Only
// departments hold rows; roles are forbidden; every other list is empty.
type fakeAPI struct {
	mu          sync.Mutex
	departments []domain.Department
	failLists   bool
	queries     map[string][]url.Values
	deletes     []client.BulkDeleteRequest
	logouts     []string
}

func newFakeAPI(rows int) *fakeAPI {
	api := &fakeAPI{queries: make(map[string][]url.Values)}
	for i := 1; i <= rows; i++ {
		d := domain.Department{Code: fmt.Sprintf("D%02d", i), Name: fmt.Sprintf("dept %d", i)}
		d.ID = uint(i)
		api.departments = append(api.departments, d)
	}
	return api
}

func reply(w http.ResponseWriter, status int, body map[string]any) {
	body["code"] = status
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (a *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	if path == "/auth/login" {
		var in struct{ Account, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "secret" {
			reply(w, http.StatusUnauthorized, map[string]any{"error": "UNAUTHORIZED", "message": "invalid credentials"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"data": map[string]any{"token": validToken, "expires_at": time.Now().Add(time.Hour).Unix()}})
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+validToken {
		reply(w, http.StatusUnauthorized, map[string]any{"error": "UNAUTHORIZED", "message": "invalid token"})
		return
	}

	switch {
	case path == "/auth/logout":
		a.logouts = append(a.logouts, r.Header.Get("Authorization"))
		reply(w, http.StatusOK, map[string]any{"data": nil})
	case path == "/roles":
		reply(w, http.StatusForbidden, map[string]any{"error": "FORBIDDEN", "message": "permission denied"})
	case path == "/departments/bulk-delete":
		var req client.BulkDeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			reply(w, http.StatusBadRequest, map[string]any{"error": "BAD_REQUEST", "message": err.Error()})
			return
		}
		a.deletes = append(a.deletes, req)
		kept := a.departments[:0]
		var n int64
		for _, d := range a.departments {
			if req.Selection.Contains(strconv.FormatUint(uint64(d.ID), 10)) {
				n++
				continue
			}
			kept = append(kept, d)
		}
		a.departments = kept
		reply(w, http.StatusOK, map[string]any{"data": map[string]any{"deleted": n}})
	case r.Method == http.MethodGet:
		a.list(w, r, strings.TrimPrefix(path, "/"))
	default:
		reply(w, http.StatusNotFound, map[string]any{"error": "NOT_FOUND", "message": "not found"})
	}
}

func (a *fakeAPI) list(w http.ResponseWriter, r *http.Request, entity string) {
	q := r.URL.Query()
	a.queries[entity] = append(a.queries[entity], q)
	if a.failLists {
		reply(w, http.StatusInternalServerError, map[string]any{"error": "INTERNAL_SERVER_ERROR", "message": "database unavailable"})
		return
	}

	var rows []domain.Department
	if entity == "departments" {
		term := q.Get("searchTerm")
		for _, d := range a.departments {
			if term == "" || strings.Contains(d.Name, term) {
				rows = append(rows, d)
			}
		}
	}
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	pages := max((len(rows)+size-1)/size, 1)
	page = min(max(page, 1), pages)
	start := min((page-1)*size, len(rows))
	end := min(start+size, len(rows))
	reply(w, http.StatusOK, map[string]any{
		"data":       rows[start:end],
		"pagination": map[string]any{"total": len(rows), "page": page, "pageSize": size, "pageCount": pages},
	})
}

func (a *fakeAPI) lastQuery(entity string) url.Values {
	a.mu.Lock()
	defer a.mu.Unlock()
	qs := a.queries[entity]
	if len(qs) == 0 {
		return nil
	}
	return qs[len(qs)-1]
}

func (a *fakeAPI) listCalls(entity string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queries[entity])
}

type harness struct {
	t     *testing.T
	api   *fakeAPI
	m     *Model
	c     *client.Client
	cache *querycache.Service
	msgs  chan tea.Msg
}

func newHarness(t *testing.T, rows int, token string) *harness {
	t.Helper()
	api := newFakeAPI(rows)
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	log := slog.New(slog.DiscardHandler)
	c := client.New(srv.URL+"/api/v1", client.WithRetry(0, time.Millisecond, time.Millisecond), client.WithLogger(log))
	c.SetToken(token)
	cache := querycache.New(querycache.Options{TTL: time.Minute, Logger: log})
	t.Cleanup(cache.Close)

	h := &harness{t: t, api: api, c: c, cache: cache, msgs: make(chan tea.Msg, 256)}
	h.m = New(Options{
		Client:         c,
		Cache:          cache,
		Logger:         log,
		Account:        "admin",
		PageSize:       10,
		SearchDelay:    5 * time.Millisecond,
		RequestTimeout: 5 * time.Second,
	})
	t.Cleanup(h.m.Attach(func(msg tea.Msg) { h.msgs <- msg }))
	return h
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// run executes cmd and feeds every resulting message back into the model
// until nothing arrives for a while. Slow commands such as cursor blinks and
// flash expiry ticks are abandoned.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	exec := func(c tea.Cmd) {
		if c != nil {
			go func() { h.msgs <- c() }()
		}
	}
	exec(cmd)
	for {
		select {
		case msg := <-h.msgs:
			switch msg := msg.(type) {
			case nil:
			case tea.BatchMsg:
				for _, c := range msg {
					exec(c)
				}
			default:
				_, next := h.m.Update(msg)
				exec(next)
			}
		case <-time.After(200 * time.Millisecond):
			return
		}
	}
}

// press sends each key and settles the model after every one.
func (h *harness) press(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		_, cmd := h.m.Update(keyMsg(k))
		h.run(cmd)
	}
}

// burst sends keys back to back and settles the model once at the end.
func (h *harness) burst(keys ...string) {
	h.t.Helper()
	var cmds []tea.Cmd
	for _, k := range keys {
		_, cmd := h.m.Update(keyMsg(k))
		cmds = append(cmds, cmd)
	}
	h.run(tea.Batch(cmds...))
}

func (h *harness) departments() *listScreen[domain.Department] {
	return h.m.screen("departments").(*listScreen[domain.Department])
}

func departmentsPage(page, totalPages int) listview.Page[domain.Department] {
	items := make([]domain.Department, 10)
	for i := range items {
		items[i].ID = uint((page-1)*10 + i + 1)
		items[i].Name = fmt.Sprintf("dept %d", items[i].ID)
	}
	return listview.Page[domain.Department]{Items: items, Total: int64(totalPages * 10), Page: page, PageSize: 10, TotalPages: totalPages}
}

func TestModel_LoginThenOpenList(t *testing.T) {
	h := newHarness(t, 25, "")
	if h.m.state != stateLogin {
		t.Fatalf("expected login state without a token, got %v", h.m.state)
	}
	if !h.m.login.password.Focused() {
		t.Fatal("expected the password field to be focused when the account is prefilled")
	}

	h.press("secret", "enter")
	if h.m.state != stateHome {
		t.Fatalf("expected home after login, got %v", h.m.state)
	}
	if h.c.Token() != validToken {
		t.Errorf("expected token %q, got %q", validToken, h.c.Token())
	}
	if !strings.Contains(h.m.View(), "Signed in") {
		t.Error("expected a sign-in notification")
	}

	h.press("1")
	s := h.departments()
	if h.m.current != screen(s) {
		t.Fatal("expected the departments screen to be active")
	}
	if got := len(s.table.Rows); got != 10 {
		t.Fatalf("expected 10 rows, got %d", got)
	}
	if s.table.TotalPages != 3 || s.table.Total != 25 {
		t.Errorf("expected 25 rows on 3 pages, got %d on %d", s.table.Total, s.table.TotalPages)
	}
	if v := h.m.View(); !strings.Contains(v, "dept 1") || !strings.Contains(v, "page 1/3") {
		t.Errorf("unexpected view:\n%s", v)
	}
}

func TestModel_BadLoginShowsError(t *testing.T) {
	h := newHarness(t, 1, "")
	h.press("wrong", "enter")

	if h.m.state != stateLogin {
		t.Fatalf("expected to stay on login, got %v", h.m.state)
	}
	if !client.IsUnauthorized(h.m.login.err) {
		t.Fatalf("expected UNAUTHORIZED, got %v", h.m.login.err)
	}
	if !strings.Contains(h.m.View(), "invalid credentials") {
		t.Errorf("expected the server message in the view:\n%s", h.m.View())
	}
	if h.m.login.password.Value() != "" {
		t.Error("expected the password to be cleared for the next attempt")
	}
}

func TestList_PagingSortingAndJump(t *testing.T) {
	h := newHarness(t, 25, validToken)
	h.press("1", "right")

	if got := h.api.lastQuery("departments").Get("page"); got != "2" {
		t.Fatalf("expected page 2 to be fetched, got %q", got)
	}
	if h.departments().table.Page != 2 {
		t.Errorf("expected page 2 shown, got %d", h.departments().table.Page)
	}

	h.press("g", "9", "enter")
	if got := h.api.lastQuery("departments").Get("page"); got != "3" {
		t.Fatalf("expected jump clamped to page 3, got %q", got)
	}
	if got := len(h.departments().table.Rows); got != 5 {
		t.Errorf("expected 5 rows on the last page, got %d", got)
	}

	h.press("s")
	q := h.api.lastQuery("departments")
	if q.Get("orderBy") != "code" || q.Get("orderDirection") != "DESC" || q.Get("page") != "1" {
		t.Fatalf("expected code DESC on page 1, got %v", q)
	}
	h.press("S")
	if got := h.api.lastQuery("departments").Get("orderDirection"); got != "ASC" {
		t.Errorf("expected flipped direction ASC, got %q", got)
	}
}

func TestList_SearchIsDebounced(t *testing.T) {
	h := newHarness(t, 25, validToken)
	h.press("1", "/")
	before := h.api.listCalls("departments")

	h.burst("1", "2")
	if got := h.api.listCalls("departments") - before; got != 1 {
		t.Fatalf("expected one fetch for the burst, got %d", got)
	}
	if got := h.api.lastQuery("departments").Get("searchTerm"); got != "12" {
		t.Errorf("expected searchTerm 12, got %q", got)
	}
	if got := h.departments().table.Total; got != 1 {
		t.Errorf("expected 1 match, got %d", got)
	}

	h.press("esc")
	if h.departments().capturing() {
		t.Error("expected esc to close the search input")
	}
	if got := h.departments().table.SearchTerm; got != "12" {
		t.Errorf("expected the search term kept, got %q", got)
	}
}

func TestList_SearchEnterCommitsAtOnce(t *testing.T) {
	h := newHarness(t, 25, validToken)
	h.press("1")
	s := h.departments()
	s.view.Ctrl.SetSearchDelay(time.Hour)

	h.press("/", "2", "enter")
	if got := h.api.lastQuery("departments").Get("searchTerm"); got != "2" {
		t.Fatalf("expected enter to commit searchTerm 2, got %q", got)
	}
	if s.capturing() {
		t.Error("expected the search input to close on enter")
	}
}

func TestList_SelectAndBulkDelete(t *testing.T) {
	h := newHarness(t, 25, validToken)
	h.press("1", " ", "down", " ")

	s := h.departments()
	if s.table.Selected != 2 {
		t.Fatalf("expected 2 selected, got %d", s.table.Selected)
	}

	h.press("d")
	if !strings.Contains(h.m.View(), "Delete 2 departments?") {
		t.Fatalf("expected a confirmation prompt:\n%s", h.m.View())
	}
	h.press("y")

	if len(h.api.deletes) != 1 {
		t.Fatalf("expected one bulk delete, got %d", len(h.api.deletes))
	}
	sel := h.api.deletes[0].Selection
	if sel.IsAllExcept() || sel.Count(0) != 2 || !sel.Contains("1") || !sel.Contains("2") {
		t.Errorf("unexpected selection %v", sel)
	}
	if s.table.Selected != 0 {
		t.Errorf("expected the selection cleared, got %d", s.table.Selected)
	}
	if s.table.Total != 23 {
		t.Errorf("expected the list refreshed to 23 rows, got %d", s.table.Total)
	}
	if !strings.Contains(h.m.View(), "Deleted 2 departments") {
		t.Errorf("expected a success notification:\n%s", h.m.View())
	}
}

func TestList_LeavingDropsSelectionKeepsQuery(t *testing.T) {
	h := newHarness(t, 25, validToken)
	h.press("1", "right", " ")

	s := h.departments()
	if s.table.Selected != 1 {
		t.Fatalf("expected 1 selected, got %d", s.table.Selected)
	}

	h.press("esc", "1")
	if got := s.view.Tracker.SelectedCount(); got != 0 {
		t.Errorf("expected the selection dropped on leaving, got %d", got)
	}
	if s.table.Selected != 0 {
		t.Errorf("expected the table to show 0 selected, got %d", s.table.Selected)
	}
	if s.table.Page != 2 {
		t.Errorf("expected the query kept on page 2, got %d", s.table.Page)
	}

	h.press("d")
	if s.capturing() {
		t.Error("expected no delete prompt without a selection")
	}
}

func TestList_DeleteWithoutSelectionWarns(t *testing.T) {
	h := newHarness(t, 3, validToken)
	h.press("1", "d")
	if h.departments().capturing() {
		t.Fatal("expected no confirmation without a selection")
	}
	if !strings.Contains(h.m.View(), "Nothing selected") {
		t.Errorf("expected a warning:\n%s", h.m.View())
	}
}

func TestList_SelectAllMatchingDeletesAllExcept(t *testing.T) {
	h := newHarness(t, 25, validToken)
	h.press("1", "A", " ")

	s := h.departments()
	if s.table.Selected != 24 {
		t.Fatalf("expected 24 selected, got %d", s.table.Selected)
	}
	h.press("d", "y")

	if len(h.api.deletes) != 1 {
		t.Fatalf("expected one bulk delete, got %d", len(h.api.deletes))
	}
	sel := h.api.deletes[0].Selection
	if !sel.IsAllExcept() || sel.Contains("1") {
		t.Errorf("expected all except the first row, got %v", sel)
	}
	if s.table.Total != 1 {
		t.Errorf("expected one row left, got %d", s.table.Total)
	}
}

func TestList_UnauthorizedReturnsToLoginAndResumes(t *testing.T) {
	h := newHarness(t, 5, "expired")
	h.press("1")

	if h.m.state != stateLogin {
		t.Fatalf("expected login after UNAUTHORIZED, got %v", h.m.state)
	}
	if h.c.Token() != "" {
		t.Error("expected the token to be cleared")
	}
	if h.m.intended != "departments" {
		t.Errorf("expected to remember departments, got %q", h.m.intended)
	}

	h.press("secret", "enter")
	if h.m.state != stateList || h.m.current != screen(h.departments()) {
		t.Fatalf("expected to resume on departments, got state %v", h.m.state)
	}
	if got := len(h.departments().table.Rows); got != 5 {
		t.Errorf("expected 5 rows after login, got %d", got)
	}
}

func TestList_ForbiddenGoesHome(t *testing.T) {
	h := newHarness(t, 1, validToken)
	h.press("7")

	if h.m.state != stateHome {
		t.Fatalf("expected home after FORBIDDEN, got %v", h.m.state)
	}
	if !strings.Contains(h.m.View(), "do not have access") {
		t.Errorf("expected a failure notification:\n%s", h.m.View())
	}
}

func TestList_FailurePanelAndRetry(t *testing.T) {
	h := newHarness(t, 3, validToken)
	h.api.failLists = true
	h.press("1")

	s := h.departments()
	if s.view.Err() == nil {
		t.Fatal("expected a fetch error")
	}
	if v := h.m.View(); !strings.Contains(v, "database unavailable") || !strings.Contains(v, "Press r to retry") {
		t.Fatalf("expected the failure panel:\n%s", v)
	}

	h.api.mu.Lock()
	h.api.failLists = false
	h.api.mu.Unlock()
	h.press("r")
	if s.view.Err() != nil {
		t.Fatalf("expected the retry to succeed, got %v", s.view.Err())
	}
	if len(s.table.Rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(s.table.Rows))
	}
}

func TestList_InvalidationReachesHiddenScreens(t *testing.T) {
	h := newHarness(t, 3, validToken)
	h.press("1", "esc", "2")
	calls := h.api.listCalls("departments")

	h.press("esc", "1")
	if got := h.api.listCalls("departments"); got != calls {
		t.Fatalf("expected the shown page to be reused, got %d fetches", got-calls)
	}

	h.press("esc")
	h.cache.Invalidate(querycache.ListPrefix("departments"))
	h.run(nil)
	if !h.departments().view.NeedsFetch() {
		t.Fatal("expected the hidden departments screen to be stale")
	}
	h.press("1")
	if got := h.api.listCalls("departments"); got != calls+1 {
		t.Errorf("expected one refetch, got %d", got-calls)
	}
}

func TestList_StaleResponsesAreDropped(t *testing.T) {
	h := newHarness(t, 0, validToken)
	s := h.departments()

	firstKey := s.view.Key()
	s.update(pageMsg[domain.Department]{entity: "departments", key: firstKey, page: departmentsPage(1, 3)})
	s.dispatch(listview.ClickPage(2))
	if s.view.Key() == firstKey {
		t.Fatal("expected the committed key to change")
	}

	s.update(pageMsg[domain.Department]{entity: "departments", key: firstKey, page: departmentsPage(1, 3)})
	if !s.view.NeedsFetch() {
		t.Fatal("expected the late response of the old key to be dropped")
	}
	s.update(pageMsg[domain.Department]{entity: "departments", key: s.view.Key(), page: departmentsPage(2, 3)})
	if s.view.NeedsFetch() || s.table.Page != 2 {
		t.Errorf("expected page 2 installed, got page %d", s.table.Page)
	}
}

func TestList_PanicWhileShowingPageIsRecovered(t *testing.T) {
	h := newHarness(t, 0, validToken)
	def := departments
	def.columns = append(def.columns[:1:1], departments.columns[1])
	def.columns[1].Value = func(domain.Department) any { panic("boom") }
	s := newListScreen(h.m.env, def)

	s.update(pageMsg[domain.Department]{entity: "departments", key: s.view.Key(), page: departmentsPage(1, 1)})
	if err := s.view.Err(); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected the panic recorded as the failure, got %v", err)
	}
	if !strings.Contains(s.render(80), "Press r to retry") {
		t.Error("expected the failure panel")
	}
}

func TestModel_FlashExpires(t *testing.T) {
	h := newHarness(t, 0, validToken)
	h.m.Update(flashMsg{})
	h.m.Update(flashMsg{})
	stale := h.m.flashSeq - 1

	h.m.Update(flashExpiredMsg{seq: stale})
	if h.m.flash == nil {
		t.Fatal("expected an older expiry to keep the newer flash")
	}
	h.m.Update(flashExpiredMsg{seq: h.m.flashSeq})
	if h.m.flash != nil {
		t.Error("expected the flash to expire")
	}
}

func TestModel_Logout(t *testing.T) {
	h := newHarness(t, 3, validToken)
	h.press("1", " ", "esc", "o")

	if h.m.state != stateLogin {
		t.Fatalf("expected login after logout, got %v", h.m.state)
	}
	if h.c.Token() != "" {
		t.Error("expected the token to be cleared")
	}
	h.api.mu.Lock()
	logouts := append([]string(nil), h.api.logouts...)
	h.api.mu.Unlock()
	if len(logouts) != 1 || logouts[0] != "Bearer "+validToken {
		t.Errorf("expected the old token to be revoked, got %v", logouts)
	}
	if h.departments().view.Tracker.SelectedCount() != 0 {
		t.Error("expected list state reset")
	}
	if h.cache.Len() != 0 {
		t.Errorf("expected the cache emptied, got %d entries", h.cache.Len())
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		in   string
		w    int
		want string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 4, "abc…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := fit(tt.in, tt.w); got != tt.want {
			t.Errorf("fit(%q, %d) = %q, want %q", tt.in, tt.w, got, tt.want)
		}
	}
}
