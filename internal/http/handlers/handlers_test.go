package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-movie-catalog/internal/domain"
	"github.com/tbourn/go-movie-catalog/internal/http/middleware"
	"github.com/tbourn/go-movie-catalog/internal/repo"
	"github.com/tbourn/go-movie-catalog/internal/services"
)

// ---------- test DB + shims ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type testRepo struct{}

func (testRepo) GetMovie(ctx context.Context, db *gorm.DB, id int64) (*domain.Movie, error) {
	return repo.GetMovie(ctx, db, id)
}
func (testRepo) FindMovies(ctx context.Context, db *gorm.DB, f repo.MovieFilter) ([]domain.Movie, error) {
	return repo.FindMovies(ctx, db, f)
}
func (testRepo) FindDuplicate(ctx context.Context, db *gorm.DB, title, director string, excludeID int64) (*domain.Movie, error) {
	return repo.FindDuplicate(ctx, db, title, director, excludeID)
}
func (testRepo) ListMovies(ctx context.Context, db *gorm.DB) ([]domain.Movie, error) {
	return repo.ListMovies(ctx, db)
}
func (testRepo) ListReviewedMovies(ctx context.Context, db *gorm.DB) ([]domain.Movie, error) {
	return repo.ListReviewedMovies(ctx, db)
}
func (testRepo) InsertMovie(ctx context.Context, db *gorm.DB, m *domain.Movie) error {
	return repo.InsertMovie(ctx, db, m)
}
func (testRepo) UpdateMovie(ctx context.Context, db *gorm.DB, m *domain.Movie) error {
	return repo.UpdateMovie(ctx, db, m)
}
func (testRepo) DeleteMovie(ctx context.Context, db *gorm.DB, id int64) error {
	return repo.DeleteMovie(ctx, db, id)
}
func (testRepo) SetMovieSentiment(ctx context.Context, db *gorm.DB, id int64, review string, raw *string, analyzedAt time.Time) error {
	return repo.SetMovieSentiment(ctx, db, id, review, raw, analyzedAt)
}

type testStore struct {
	db      *gorm.DB
	pingErr error
}

func (s *testStore) Ping(ctx context.Context) error {
	if s.pingErr != nil {
		return s.pingErr
	}
	return repo.Ping(ctx, s.db)
}
func (s *testStore) MoviesStats(ctx context.Context) (int64, *time.Time, error) {
	return repo.MoviesStats(ctx, s.db)
}
func (s *testStore) GetIdempotency(ctx context.Context, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, s.db, scope, key, now)
}
func (s *testStore) CreateIdempotency(ctx context.Context, scope, key string, movieID int64, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, s.db, scope, key, movieID, status, ttl)
}

// stubClassifier scores reviews containing "great" as positive; texts listed
// in fail return the mapped error.
type stubClassifier struct {
	ready bool
	fail  map[string]error
}

func (s *stubClassifier) Ready() bool { return s.ready }
func (s *stubClassifier) Classify(_ context.Context, text string) (domain.Sentiment, error) {
	if err, ok := s.fail[text]; ok {
		return nil, err
	}
	if strings.Contains(strings.ToLower(text), "great") {
		return domain.NewSentiment(0.9, 0.1), nil
	}
	return domain.NewSentiment(0.2, 0.8), nil
}

// ---------- env ----------

type env struct {
	t          *testing.T
	r          *gin.Engine
	db         *gorm.DB
	store      *testStore
	classifier *stubClassifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newHandlerDB(t)
	e := &env{t: t, db: db, store: &testStore{db: db}, classifier: &stubClassifier{ready: true}}

	h := New(Deps{
		Movies:         services.NewMovieService(db, testRepo{}),
		Reviews:        services.NewReviewService(db, testRepo{}, e.classifier, time.Second),
		Store:          e.store,
		Model:          e.classifier,
		IdempotencyTTL: time.Hour,
	})

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	r.GET("/", h.Welcome)
	r.GET("/health", h.Health)
	h.Register(r)
	e.r = r
	return e
}

func (e *env) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *env) create(title, director, category string) MovieResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/movies",
		fmt.Sprintf(`{"title":%q,"director":%q,"category":%q}`, title, director, category))
	if w.Code != http.StatusCreated {
		e.t.Fatalf("create %q: status=%d body=%s", title, w.Code, w.Body.String())
	}
	return decode[MovieResponse](e.t, w)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body=%s)", v, err, w.Body.String())
	}
	return v
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status=%d want %d body=%s", w.Code, status, w.Body.String())
	}
	er := decode[ErrorResponse](t, w)
	if er.Code != code {
		t.Fatalf("code=%q want %q", er.Code, code)
	}
	if er.RequestID == "" {
		t.Fatalf("request_id missing in %+v", er)
	}
	return er
}

// ---------- tests ----------

func TestWelcome(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := decode[WelcomeResponse](t, w); got.Messages != welcomeMessage {
		t.Fatalf("messages=%q", got.Messages)
	}
}

func TestCreateMovie_CreatedAndValidation(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/movies", `{"title":"Dune","director":"Denis Villeneuve","category":"Sci-Fi"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	m := decode[MovieResponse](t, w)
	if m.ID <= 0 || m.Title != "Dune" || m.PredictedSentiment != nil || m.Review != nil {
		t.Fatalf("unexpected movie: %+v", m)
	}
	if loc := w.Header().Get("Location"); loc != fmt.Sprintf("/movies/%d", m.ID) {
		t.Fatalf("Location=%q", loc)
	}

	er := expectError(t, e.do(http.MethodPost, "/movies", `{"title":"X","category":"Drama"}`), http.StatusBadRequest, ErrCodeBadRequest)
	if er.Message != "director is required" {
		t.Fatalf("message=%q", er.Message)
	}
	expectError(t, e.do(http.MethodPost, "/movies", `{"title":"  ","director":"D","category":"C"}`), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(http.MethodPost, "/movies", `{not json`), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(http.MethodPost, "/movies", `{"title":"Dune","director":"Denis Villeneuve","category":"Drama"}`), http.StatusConflict, ErrCodeConflict)
}

func TestCreateMovie_IdempotentReplay(t *testing.T) {
	e := newEnv(t)
	body := `{"title":"Arrival","director":"Denis Villeneuve","category":"Sci-Fi"}`

	first := e.do(http.MethodPost, "/movies", body, middleware.HeaderIdempotencyKey, "key-1")
	if first.Code != http.StatusCreated {
		t.Fatalf("first status=%d", first.Code)
	}
	second := e.do(http.MethodPost, "/movies", body, middleware.HeaderIdempotencyKey, "key-1")
	if second.Code != http.StatusCreated || second.Header().Get(middleware.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("replay status=%d headers=%v body=%s", second.Code, second.Header(), second.Body.String())
	}
	if a, b := decode[MovieResponse](t, first), decode[MovieResponse](t, second); a.ID != b.ID {
		t.Fatalf("replay returned a different movie: %d vs %d", a.ID, b.ID)
	}

	// Without the key the duplicate is a conflict.
	expectError(t, e.do(http.MethodPost, "/movies", body), http.StatusConflict, ErrCodeConflict)
}

func TestListMovies_EmptyETagAndNotModified(t *testing.T) {
	e := newEnv(t)
	expectError(t, e.do(http.MethodGet, "/movies", ""), http.StatusNotFound, ErrCodeNotFound)

	a := e.create("Dune", "Denis Villeneuve", "Sci-Fi")
	b := e.create("Heat", "Michael Mann", "Crime")

	w := e.do(http.MethodGet, "/movies", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	items := decode[[]MovieResponse](t, w)
	if len(items) != 2 || items[0].ID != a.ID || items[1].ID != b.ID {
		t.Fatalf("unexpected list: %+v", items)
	}
	etag := w.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"movies:2:`) {
		t.Fatalf("etag=%q", etag)
	}

	if w := e.do(http.MethodGet, "/movies", "", "If-None-Match", etag); w.Code != http.StatusNotModified {
		t.Fatalf("matching etag: status=%d", w.Code)
	}
	if w := e.do(http.MethodGet, "/movies", "", "If-None-Match", `W/"other", `+etag); w.Code != http.StatusNotModified {
		t.Fatalf("etag list: status=%d", w.Code)
	}

	e.do(http.MethodDelete, fmt.Sprintf("/movies/%d", b.ID), "")
	if w := e.do(http.MethodGet, "/movies", "", "If-None-Match", etag); w.Code != http.StatusOK {
		t.Fatalf("stale etag must not match after delete: status=%d", w.Code)
	}
}

func TestGetMovie_ByIDTitleDirector(t *testing.T) {
	e := newEnv(t)
	dune := e.create("Dune", "Denis Villeneuve", "Sci-Fi")
	e.create("Dune", "David Lynch", "Sci-Fi")
	e.create("Sicario", "Denis Villeneuve", "Thriller")

	if got := decode[MovieResponse](t, e.do(http.MethodGet, fmt.Sprintf("/movies/%d", dune.ID), "")); got.Title != "Dune" {
		t.Fatalf("get by id: %+v", got)
	}
	expectError(t, e.do(http.MethodGet, "/movies/abc", ""), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(http.MethodGet, "/movies/0", ""), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(http.MethodGet, "/movies/999", ""), http.StatusNotFound, ErrCodeNotFound)

	w := e.do(http.MethodGet, "/movies/title/Dune", "")
	if got := decode[MovieResponse](t, w); got.ID != dune.ID {
		t.Fatalf("title lookup must return lowest id, got %+v", got)
	}
	expectError(t, e.do(http.MethodGet, "/movies/title/Nope", ""), http.StatusNotFound, ErrCodeNotFound)

	w = e.do(http.MethodGet, "/movies/director/Denis%20Villeneuve", "")
	if got := decode[[]MovieResponse](t, w); len(got) != 2 {
		t.Fatalf("director lookup: %+v", got)
	}
	expectError(t, e.do(http.MethodGet, "/movies/director/Nobody", ""), http.StatusNotFound, ErrCodeNotFound)
}

func TestLookup_SlashInValue(t *testing.T) {
	e := newEnv(t)
	fo := e.create("Face/Off", "John Woo", "Action")
	e.create("Mystery", "AC/DC", "Music")

	if got := decode[MovieResponse](t, e.do(http.MethodGet, "/movies/title/Face/Off", "")); got.ID != fo.ID {
		t.Fatalf("title with slash: %+v", got)
	}
	if got := decode[MovieResponse](t, e.do(http.MethodGet, "/movies/title/Face%2FOff", "")); got.ID != fo.ID {
		t.Fatalf("escaped slash: %+v", got)
	}
	if got := decode[[]MovieResponse](t, e.do(http.MethodGet, "/movies/director/AC/DC", "")); len(got) != 1 || got[0].Title != "Mystery" {
		t.Fatalf("director with slash: %+v", got)
	}
	expectError(t, e.do(http.MethodGet, "/movies/title/Face/Off/Again", ""), http.StatusNotFound, ErrCodeNotFound)
}

func TestLookup_ExactAfterTrim(t *testing.T) {
	e := newEnv(t)
	dune := e.create("Dune", "Denis Villeneuve", "Sci-Fi")

	if got := decode[MovieResponse](t, e.do(http.MethodGet, "/movies/title/%20Dune%20", "")); got.ID != dune.ID {
		t.Fatalf("surrounding whitespace must be ignored: %+v", got)
	}
	expectError(t, e.do(http.MethodGet, "/movies/title/dune", ""), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, e.do(http.MethodGet, "/movies/director/denis%20villeneuve", ""), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, e.do(http.MethodGet, "/movies/title/%20", ""), http.StatusBadRequest, ErrCodeBadRequest)
}

func TestSearchMovies(t *testing.T) {
	e := newEnv(t)
	e.create("Dune", "Denis Villeneuve", "Sci-Fi")
	e.create("Sicario", "Denis Villeneuve", "Thriller")

	expectError(t, e.do(http.MethodGet, "/movies/search", ""), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(http.MethodGet, "/movies/search?title=&category=", ""), http.StatusBadRequest, ErrCodeBadRequest)

	w := e.do(http.MethodGet, "/movies/search?director=Denis+Villeneuve&category=Thriller", "")
	got := decode[[]MovieResponse](t, w)
	if len(got) != 1 || got[0].Title != "Sicario" {
		t.Fatalf("search: %+v", got)
	}
	expectError(t, e.do(http.MethodGet, "/movies/search?title=Dune&category=Drama", ""), http.StatusNotFound, ErrCodeNotFound)
}

func TestUpdateMovie(t *testing.T) {
	e := newEnv(t)
	m := e.create("Dune", "Denis Villeneuve", "Sci-Fi")
	other := e.create("Heat", "Michael Mann", "Crime")
	path := fmt.Sprintf("/movies/%d", m.ID)

	w := e.do(http.MethodPut, path, `{"id":999,"rating":4.5,"image_url":"https://img/dune.jpg","predicted_sentiment":{"positive":1,"negative":0}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got := decode[MovieResponse](t, w)
	if got.ID != m.ID || got.Title != "Dune" || got.Rating == nil || *got.Rating != 4.5 || got.PredictedSentiment != nil {
		t.Fatalf("unexpected update: %+v", got)
	}

	expectError(t, e.do(http.MethodPut, path, `{"title":"Heat","director":"Michael Mann"}`), http.StatusConflict, ErrCodeConflict)
	expectError(t, e.do(http.MethodPut, path, `{"category":""}`), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(http.MethodPut, path, `[]`), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(http.MethodPut, "/movies/x", `{}`), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(http.MethodPut, "/movies/12345", `{"title":"Z"}`), http.StatusNotFound, ErrCodeNotFound)

	// Updating a record to its own pair is not a conflict.
	if w := e.do(http.MethodPut, fmt.Sprintf("/movies/%d", other.ID), `{"title":"Heat","director":"Michael Mann"}`); w.Code != http.StatusOK {
		t.Fatalf("self pair: status=%d", w.Code)
	}
}

func TestDeleteMovie(t *testing.T) {
	e := newEnv(t)
	m := e.create("Dune", "Denis Villeneuve", "Sci-Fi")
	path := fmt.Sprintf("/movies/%d", m.ID)

	w := e.do(http.MethodDelete, path, "")
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
	expectError(t, e.do(http.MethodDelete, path, ""), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, e.do(http.MethodGet, path, ""), http.StatusNotFound, ErrCodeNotFound)
}

func TestAttachReview_BodyForms(t *testing.T) {
	e := newEnv(t)
	m := e.create("Dune", "Denis Villeneuve", "Sci-Fi")
	path := fmt.Sprintf("/movies/%d/review", m.ID)

	w := e.do(http.MethodPost, path, `"Great acting and story!"`)
	if got := decode[MovieResponse](t, w); w.Code != http.StatusOK || got.Review == nil || *got.Review != "Great acting and story!" {
		t.Fatalf("json string: status=%d %+v", w.Code, got)
	}

	w = e.do(http.MethodPost, path, "", "Content-Type", "text/plain")
	expectError(t, w, http.StatusBadRequest, ErrCodeBadRequest)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("Slow but rewarding."))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	w = httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	if got := decode[MovieResponse](t, w); got.Review == nil || *got.Review != "Slow but rewarding." {
		t.Fatalf("raw text: %+v", got)
	}

	expectError(t, e.do(http.MethodPost, path, `{"review":"x"}`), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(http.MethodPost, path, `"   "`), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, e.do(http.MethodPost, "/movies/777/review", `"fine"`), http.StatusNotFound, ErrCodeNotFound)
}

func TestAnalyzeReviews_FlowAndStaleness(t *testing.T) {
	e := newEnv(t)
	expectError(t, e.do(http.MethodPost, "/movies/review_analyze", ""), http.StatusNotFound, ErrCodeNotFound)

	dune := e.create("Dune", "Denis Villeneuve", "Sci-Fi")
	heat := e.create("Heat", "Michael Mann", "Crime")
	plain := e.create("Plain", "Nobody", "Drama")
	e.do(http.MethodPost, fmt.Sprintf("/movies/%d/review", dune.ID), `"Great acting and story!"`)
	e.do(http.MethodPost, fmt.Sprintf("/movies/%d/review", heat.ID), `"broken review"`)
	e.classifier.fail = map[string]error{"broken review": context.DeadlineExceeded}

	w := e.do(http.MethodPost, "/movies/review_analyze", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get(HeaderAnalysisFailed); got != fmt.Sprint(heat.ID) {
		t.Fatalf("%s=%q", HeaderAnalysisFailed, got)
	}
	analyzed := decode[[]MovieResponse](t, w)
	if len(analyzed) != 1 || analyzed[0].ID != dune.ID || analyzed[0].PredictedSentiment == nil {
		t.Fatalf("analyzed=%+v", analyzed)
	}
	if ps := analyzed[0].PredictedSentiment; ps.Positive <= ps.Negative {
		t.Fatalf("expected positive sentiment, got %+v", ps)
	}

	got := decode[MovieResponse](t, e.do(http.MethodGet, fmt.Sprintf("/movies/%d", plain.ID), ""))
	if got.PredictedSentiment != nil {
		t.Fatalf("unreviewed movie gained sentiment: %+v", got)
	}

	// A new review hides the old sentiment until the next analysis.
	w = e.do(http.MethodPost, fmt.Sprintf("/movies/%d/review", dune.ID), `"Too long."`)
	if got := decode[MovieResponse](t, w); got.PredictedSentiment != nil {
		t.Fatalf("stale sentiment reported: %+v", got)
	}

	e.classifier.ready = false
	expectError(t, e.do(http.MethodPost, "/movies/review_analyze", ""), http.StatusServiceUnavailable, ErrCodeModelUnavailable)
}

func TestHealth_States(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || decode[HealthResponse](t, w) != (HealthResponse{"ok", "ready", "connected"}) {
		t.Fatalf("healthy: %d %s", w.Code, w.Body.String())
	}

	e.classifier.ready = false
	w = e.do(http.MethodGet, "/health", "")
	if w.Code != http.StatusServiceUnavailable || decode[HealthResponse](t, w) != (HealthResponse{"error", "not ready", "connected"}) {
		t.Fatalf("model down: %d %s", w.Code, w.Body.String())
	}

	e.classifier.ready = true
	e.store.pingErr = errors.New("disk I/O error")
	w = e.do(http.MethodGet, "/health", "")
	if w.Code != http.StatusServiceUnavailable || decode[HealthResponse](t, w) != (HealthResponse{"error", "unknown", "disconnected"}) {
		t.Fatalf("db down: %d %s", w.Code, w.Body.String())
	}
}

func TestHealth_NilDependencies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(Deps{})
	r := gin.New()
	r.GET("/health", h.Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), `"disconnected"`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestWriteServiceError_InternalHidesDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	lg := zerolog.New(&buf)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-500")
		c.Set("logger", &lg)
		c.Next()
	})
	r.GET("/boom", func(c *gin.Context) { writeServiceError(c, errors.New("sql: connection refused")) })
	r.GET("/wrapped", func(c *gin.Context) {
		writeServiceError(c, fmt.Errorf("batch: %w", services.ErrModelUnavailable))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	er := expectError(t, w, http.StatusInternalServerError, ErrCodeInternal)
	if strings.Contains(er.Message, "connection refused") {
		t.Fatalf("internal detail leaked: %q", er.Message)
	}
	if !strings.Contains(buf.String(), "connection refused") || !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("detail not logged: %s", buf.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wrapped", nil))
	expectError(t, w, http.StatusServiceUnavailable, ErrCodeModelUnavailable)
}

func TestParseReviewBody(t *testing.T) {
	cases := []struct {
		name, ct, body, want string
		wantErr              bool
	}{
		{"json string", "application/json", `"hello"`, "hello", false},
		{"json escapes", "application/json; charset=utf-8", `"café \"ok\""`, `café "ok"`, false},
		{"json empty", "application/json", ``, "", false},
		{"json object rejected", "application/json", `{"review":"x"}`, "", true},
		{"quoted without type", "", `"quoted"`, "quoted", false},
		{"raw text", "text/plain", "just text", "just text", false},
		{"raw with leading quote fallback", "text/plain", `"unterminated`, `"unterminated`, false},
		{"invalid utf8", "text/plain", "\xff\xfe", "", true},
	}
	for _, tc := range cases {
		got, err := parseReviewBody(tc.ct, []byte(tc.body))
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("%s: got %q, %v", tc.name, got, err)
		}
	}
}

func TestETagHelpers(t *testing.T) {
	ts := time.Unix(0, 42)
	if got := moviesETag(3, &ts); got != `W/"movies:3:42"` {
		t.Fatalf("etag=%q", got)
	}
	if got := moviesETag(0, nil); got != `W/"movies:0:0"` {
		t.Fatalf("etag=%q", got)
	}
	if !etagMatches("*", "x") || etagMatches("", "x") || etagMatches(`W/"a"`, `W/"b"`) {
		t.Fatalf("etagMatches mismatch")
	}
}
