// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/media-shelf/backend/config"
	"github.com/media-shelf/backend/internal/infra/dependency"
	"github.com/media-shelf/backend/internal/integration/cache"
	"github.com/media-shelf/backend/internal/integration/persistence/model"
	"github.com/media-shelf/backend/test/integration/mock"
)

const testJWTSecret = "test-jwt-secret-key-for-testing-purposes"

// testContext holds the state of one scenario.
type testContext struct {
	server   *httptest.Server
	client   *http.Client
	injector *dependency.Injector
	db       *mock.Db
	redis    *mock.Redis

	headers     map[string]string
	accessToken string
	owners      map[string]uuid.UUID
	ownerName   string
	categories  map[string]uuid.UUID
	response    *response
}

type response struct {
	status int
	body   any
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	test := &testContext{
		client: &http.Client{Timeout: 10 * time.Second},
		db: mock.NewDb(map[string]any{
			"categories":          &model.CategoryModel{},
			"category_tree_locks": &model.CategoryTreeLockModel{},
			"books":               &model.BookModel{},
			"movies":              &model.MovieModel{},
			"tv_shows":            &model.TvShowModel{},
		}),
		redis: mock.NewRedis(),
	}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, test.before()
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if test.server != nil {
			test.server.Close()
			test.server = nil
		}
		return ctx, nil
	})

	// Background steps
	ctx.Given(`^the API server is running$`, test.theAPIServerIsRunning)
	ctx.Given(`^the write limit is (\d+) requests per minute$`, test.theWriteLimitIs)

	// Owner and seed steps
	ctx.Given(`^I am authenticated as "([^"]*)"$`, test.iAmAuthenticatedAs)
	ctx.Given(`^"([^"]*)" has the categories:$`, test.hasTheCategories)
	ctx.Given(`^the "([^"]*)" "([^"]*)" is filed under "([^"]*)"$`, test.mediaIsFiledUnder)

	// Header steps
	ctx.Given(`^the header is empty$`, test.theHeaderIsEmpty)
	ctx.Given(`^the header contains the key "([^"]*)" with "([^"]*)"$`, test.theHeaderContainsTheKeyWith)

	// Request steps
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)"$`, test.iSendARequestTo)
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, test.iSendARequestToWithBody)

	// Response assertion steps
	ctx.Then(`^the response status should be (\d+)$`, test.theResponseStatusShouldBe)
	ctx.Then(`^the response should contain "([^"]*)"$`, test.theResponseShouldContain)
	ctx.Then(`^the response field "([^"]*)" should be "([^"]*)"$`, test.theResponseFieldShouldBe)
	ctx.Then(`^the response field "([^"]*)" should be null$`, test.theResponseFieldShouldBeNull)
	ctx.Then(`^the response field "([^"]*)" should have (\d+) items$`, test.theResponseFieldShouldHaveItems)

	// Store assertion steps
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, test.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, test.theDbShouldContainObjectsInWithTheValues)
	ctx.Then(`^the categories of "([^"]*)" should be:$`, test.theCategoriesShouldBe)
	ctx.Then(`^the category tree of "([^"]*)" should be cached$`, test.theTreeShouldBeCached)
	ctx.Then(`^the category tree of "([^"]*)" should not be cached$`, test.theTreeShouldNotBeCached)
}

func (t *testContext) before() error {
	t.headers = make(map[string]string)
	t.accessToken = ""
	t.owners = make(map[string]uuid.UUID)
	t.ownerName = ""
	t.categories = make(map[string]uuid.UUID)
	t.response = nil

	if err := t.db.ClearDB(); err != nil {
		return err
	}
	if err := mock.ClearRedis(t.redis); err != nil {
		return err
	}
	return t.startServer(0)
}

// startServer wires the real injector over the scenario's store and cache.
func (t *testContext) startServer(writeLimit int) error {
	if t.server != nil {
		t.server.Close()
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		JWT: config.JWTConfig{
			Secret:            testJWTSecret,
			AccessTokenExpiry: time.Hour,
		},
		RateLimit: config.RateLimitConfig{
			WriteMaxAttempts: writeLimit,
			WriteWindow:      time.Minute,
		},
	}

	treeCache := cache.NewCategoryTreeCache(t.redis.Client, cache.DefaultCategoryTreeTTL)
	t.injector = dependency.NewInjector(cfg, t.db.DbConn, treeCache, dependency.Checks{
		Database: func() bool { return t.db.DbConn != nil },
		Cache:    func() bool { return t.redis.Client.Ping(context.Background()).Err() == nil },
	})
	t.server = httptest.NewServer(t.injector.Router.Setup(cfg.Server.Environment))

	return nil
}

func (t *testContext) ownerID(name string) uuid.UUID {
	id, ok := t.owners[name]
	if !ok {
		id = uuid.New()
		t.owners[name] = id
	}
	return id
}

func (t *testContext) categoryID(name string) (uuid.UUID, error) {
	id, ok := t.categories[name]
	if !ok {
		return uuid.Nil, fmt.Errorf("no category named %q was created in this scenario", name)
	}
	return id, nil
}
