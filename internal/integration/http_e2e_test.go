//go:build integration || !unit

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "isuumo/internal/adapters/http_server"
	"isuumo/internal/app"
	"isuumo/internal/catalog"
	mysqlrepo "isuumo/internal/storage/mysql"
)

// ---------- helpers ----------

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "db", "migrations")
}

func applyMigrations(t *testing.T, db *sqlx.DB) {
	t.Helper()
	dir := migrationsDir()
	ents, err := os.ReadDir(dir)
	require.NoError(t, err, "read migrations dir %s", dir)
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	require.NotEmpty(t, files)
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		require.NoError(t, err)
		_, err = db.Exec(string(sqlBytes))
		require.NoError(t, err, "exec %s", f)
	}
}

func startMySQL(t *testing.T) *sqlx.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=isuumo"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "run mysql")
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/isuumo?parseTime=true&multiStatements=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sqlx.DB
	require.NoError(t, pool.Retry(func() error {
		var e error
		db, e = mysqlrepo.Open(context.Background(), dsn, mysqlrepo.PoolOptions{MaxOpenConns: 16, MaxIdleConns: 16, ConnMaxLifetime: time.Minute})
		return e
	}), "connect mysql")
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

const chairsCSV = `1,ゲーミングチェア,,/c/1.png,4000,100,50,60,黒,"肘掛け付き,低反発",ゲーミングチェア,10,2
2,座椅子,,/c/2.png,2000,60,50,50,白,,座椅子,20,5
3,売り切れ,,/c/3.png,1000,60,50,50,黒,,座椅子,30,0
`

const estatesCSV = `1,駅近,,/e/1.png,東京都,35.5,139.5,80000,100,60,バス・トイレ別,5
2,郊外,,/e/2.png,埼玉県,36.5,139.5,40000,40,40,,9
`

// ---------- the test ----------

func TestHTTP_EndToEnd(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	ing := app.NewIngestionService(repo, repo)
	opts := app.BatchOptions{BatchSize: 2, Workers: 2}
	n, err := ing.StreamChairs(ctx, strings.NewReader(chairsCSV), opts)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	n, err = ing.StreamEstates(ctx, strings.NewReader(estatesCSV), opts)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	s := httpserver.New(10 * time.Second)
	s.MountHandlers(&httpserver.Handlers{
		Q: app.NewQueryService(repo, repo, catalog.Default()),
		C: app.NewCommandService(repo, repo, nil),
	})
	ts := httptest.NewServer(s.Mux())
	defer ts.Close()

	getJSON := func(path string, dst any) int {
		res, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer res.Body.Close()
		if dst != nil && res.StatusCode == http.StatusOK {
			require.NoError(t, json.NewDecoder(res.Body).Decode(dst))
		}
		return res.StatusCode
	}

	var search struct {
		Count  int64 `json:"count"`
		Chairs []struct {
			ID int64 `json:"id"`
		} `json:"chairs"`
	}
	require.Equal(t, http.StatusOK, getJSON("/api/chair/search?features=%E4%BD%8E%E5%8F%8D%E7%99%BA&page=0&perPage=10", &search))
	assert.EqualValues(t, 1, search.Count)
	require.Len(t, search.Chairs, 1)
	assert.EqualValues(t, 1, search.Chairs[0].ID)

	// Concurrent buyers: exactly the stock succeeds.
	var wg sync.WaitGroup
	var mu sync.Mutex
	codes := map[int]int{}
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := http.Post(ts.URL+"/api/chair/buy/1", "application/json", strings.NewReader(`{"email":"e2e@example.com"}`))
			if err != nil {
				t.Errorf("POST: %v", err)
				return
			}
			res.Body.Close()
			mu.Lock()
			codes[res.StatusCode]++
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, map[int]int{http.StatusOK: 2, http.StatusNotFound: 6}, codes)
	assert.Equal(t, http.StatusNotFound, getJSON("/api/chair/1", nil))

	var rec struct {
		Estates []struct {
			ID int64 `json:"id"`
		} `json:"estates"`
	}
	require.Equal(t, http.StatusOK, getJSON("/api/recommended_estate/2", &rec))
	require.Len(t, rec.Estates, 1)
	assert.EqualValues(t, 1, rec.Estates[0].ID)

	res, err := http.Post(ts.URL+"/api/estate/nazotte", "application/json", strings.NewReader(
		`{"coordinates":[{"latitude":35,"longitude":139},{"latitude":36,"longitude":139},{"latitude":36,"longitude":140},{"latitude":35,"longitude":140}]}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	var naz struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&naz))
	assert.EqualValues(t, 1, naz.Count)
}
