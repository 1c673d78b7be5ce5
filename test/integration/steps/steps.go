package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/media-shelf/backend/internal/application/usecase/category"
	"github.com/media-shelf/backend/internal/domain/entity"
	"github.com/media-shelf/backend/internal/integration/cache"
	"github.com/media-shelf/backend/internal/integration/persistence/model"
)

var placeholder = regexp.MustCompile(`\{\{(id|owner):([^}]+)\}\}`)

func (t *testContext) theAPIServerIsRunning() error {
	resp, err := t.client.Get(t.server.URL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (t *testContext) theWriteLimitIs(limit int) error {
	return t.startServer(limit)
}

func (t *testContext) iAmAuthenticatedAs(name string) error {
	token, err := t.injector.TokenService.GenerateAccessToken(context.Background(), t.ownerID(name), name+"@example.com")
	if err != nil {
		return err
	}
	t.accessToken = token
	t.ownerName = name
	return nil
}

// hasTheCategories seeds categories in table order; a blank parent creates a root.
func (t *testContext) hasTheCategories(owner string, table *godog.Table) error {
	ownerID := t.ownerID(owner)
	for _, row := range table.Rows[1:] {
		name := row.Cells[0].Value
		input := category.CreateCategoryInput{OwnerID: ownerID, Name: name}

		if len(row.Cells) > 1 && row.Cells[1].Value != "" {
			parentID, err := t.categoryID(row.Cells[1].Value)
			if err != nil {
				return err
			}
			input.ParentID = &parentID
		}

		output, err := t.injector.Categories.Create.Execute(context.Background(), input)
		if err != nil {
			return fmt.Errorf("failed to seed %q: %w", name, err)
		}
		t.categories[name] = output.Category.ID
	}
	return nil
}

func (t *testContext) mediaIsFiledUnder(kind, title, categoryName string) error {
	categoryID, err := t.categoryID(categoryName)
	if err != nil {
		return err
	}

	var cat model.CategoryModel
	if err := t.db.DbConn.First(&cat, "id = ?", categoryID).Error; err != nil {
		return err
	}

	row := model.NewMediaModel(entity.MediaKind(kind), cat.OwnerID, &categoryID, title)
	return t.db.DbConn.Create(row).Error
}

func (t *testContext) theHeaderIsEmpty() error {
	t.headers = make(map[string]string)
	t.accessToken = "" // Clear access token to simulate unauthenticated request
	return nil
}

func (t *testContext) theHeaderContainsTheKeyWith(key, value string) error {
	t.headers[key] = value
	return nil
}

func (t *testContext) iSendARequestTo(method, path string) error {
	return t.executeRequest(method, t.replacePlaceholders(path), nil)
}

func (t *testContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	var payload []byte
	if body != nil && body.Content != "" {
		payload = []byte(t.replacePlaceholders(body.Content))
	}
	return t.executeRequest(method, t.replacePlaceholders(path), payload)
}

// replacePlaceholders expands {{id:<category name>}} and {{owner:<owner name>}}.
// Unknown category names expand to a fresh ID.
func (t *testContext) replacePlaceholders(content string) string {
	return placeholder.ReplaceAllStringFunc(content, func(match string) string {
		parts := placeholder.FindStringSubmatch(match)
		switch parts[1] {
		case "owner":
			return t.ownerID(parts[2]).String()
		default:
			if id, ok := t.categories[parts[2]]; ok {
				return id.String()
			}
			return uuid.NewString()
		}
	})
}

func (t *testContext) executeRequest(method, path string, payload []byte) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, t.server.URL+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}

	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	t.response = &response{
		status: resp.StatusCode,
	}

	var responseBody map[string]any
	if err := json.Unmarshal(bodyBytes, &responseBody); err != nil {
		t.response.body = string(bodyBytes)
		return nil
	}
	t.response.body = responseBody

	// Capture created categories by name for later placeholders
	if idStr, ok := responseBody["id"].(string); ok {
		if name, ok := responseBody["name"].(string); ok {
			if id, err := uuid.Parse(idStr); err == nil {
				t.categories[name] = id
			}
		}
	}

	return nil
}

func (t *testContext) theResponseStatusShouldBe(expectedStatus int) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if t.response.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d (body: %v)", expectedStatus, t.response.status, t.response.body)
	}
	return nil
}

func (t *testContext) jsonBody() (map[string]any, error) {
	if t.response == nil {
		return nil, errors.New("no response received")
	}
	body, ok := t.response.body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response is not a JSON object: %v", t.response.body)
	}
	return body, nil
}

func (t *testContext) theResponseShouldContain(field string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}
	if _, exists := body[field]; !exists {
		return fmt.Errorf("response does not contain field '%s': %v", field, body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(field, expectedValue string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}

	value := getFieldValue(body, t.replacePlaceholders(field))
	if value == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, body)
	}

	actualValue := fmt.Sprintf("%v", value)
	if expected := t.replacePlaceholders(expectedValue); actualValue != expected {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expected, actualValue)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBeNull(field string) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}
	if value := getFieldValue(body, field); value != nil {
		return fmt.Errorf("field '%s' expected null, got %v", field, value)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldHaveItems(field string, count int) error {
	body, err := t.jsonBody()
	if err != nil {
		return err
	}

	switch v := getFieldValue(body, field).(type) {
	case []any:
		if len(v) != count {
			return fmt.Errorf("field '%s' expected %d items, got %d", field, count, len(v))
		}
	case map[string]any:
		if len(v) != count {
			return fmt.Errorf("field '%s' expected %d entries, got %d", field, count, len(v))
		}
	default:
		return fmt.Errorf("field '%s' is not a list: %v", field, v)
	}
	return nil
}

func (t *testContext) modelSlice(table string) (any, error) {
	m, ok := t.db.GetModel(table)
	if !ok {
		return nil, fmt.Errorf("table '%s' not found in models", table)
	}
	entityType := reflect.TypeOf(m).Elem()
	entitySlice := reflect.MakeSlice(reflect.SliceOf(entityType), 0, 0)
	entitySlicePtr := reflect.New(entitySlice.Type())
	entitySlicePtr.Elem().Set(entitySlice)
	return entitySlicePtr.Interface(), nil
}

func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	rows, err := t.modelSlice(table)
	if err != nil {
		return err
	}

	if err := t.db.DbConn.Find(rows).Error; err != nil {
		return err
	}

	count := reflect.ValueOf(rows).Elem().Len()
	if count != quantity {
		return fmt.Errorf("expected %d objects in '%s', got %d", quantity, table, count)
	}
	return nil
}

func (t *testContext) theDbShouldContainObjectsInWithTheValues(quantity int, table string, content *godog.DocString) error {
	var criteria map[string]any
	if err := json.Unmarshal([]byte(t.replacePlaceholders(content.Content)), &criteria); err != nil {
		return err
	}

	rows, err := t.modelSlice(table)
	if err != nil {
		return err
	}

	query := t.db.DbConn
	for key, value := range criteria {
		if value == nil {
			query = query.Where(fmt.Sprintf("%s IS NULL", key))
			continue
		}
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	if err := query.Find(rows).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	count := reflect.ValueOf(rows).Elem().Len()
	if count != quantity {
		return fmt.Errorf("expected %d objects in '%s' with criteria %v, got %d", quantity, table, criteria, count)
	}
	return nil
}

// theCategoriesShouldBe compares name, path and level of every category the owner has.
func (t *testContext) theCategoriesShouldBe(owner string, table *godog.Table) error {
	var rows []model.CategoryModel
	if err := t.db.DbConn.Where("owner_id = ?", t.ownerID(owner)).Find(&rows).Error; err != nil {
		return err
	}

	byName := make(map[string]model.CategoryModel, len(rows))
	for _, row := range rows {
		byName[row.Name] = row
	}

	expected := table.Rows[1:]
	if len(expected) != len(rows) {
		return fmt.Errorf("expected %d categories, got %d", len(expected), len(rows))
	}

	for _, r := range expected {
		name, path := r.Cells[0].Value, r.Cells[1].Value
		row, ok := byName[name]
		if !ok {
			return fmt.Errorf("category %q not found", name)
		}
		if row.Path != path {
			return fmt.Errorf("category %q expected path %s, got %s", name, path, row.Path)
		}
		if len(r.Cells) > 2 {
			level, err := strconv.Atoi(r.Cells[2].Value)
			if err != nil {
				return err
			}
			if row.Level != level {
				return fmt.Errorf("category %q expected level %d, got %d", name, level, row.Level)
			}
		}
	}
	return nil
}

func (t *testContext) theTreeShouldBeCached(owner string) error {
	if !t.redis.Server.Exists(cache.CategoryTreeKey(t.ownerID(owner))) {
		return fmt.Errorf("category tree of %q is not cached", owner)
	}
	return nil
}

func (t *testContext) theTreeShouldNotBeCached(owner string) error {
	if t.redis.Server.Exists(cache.CategoryTreeKey(t.ownerID(owner))) {
		return fmt.Errorf("category tree of %q is still cached", owner)
	}
	return nil
}

func getFieldValue(object any, dotSeparatedField string) any {
	if object == nil {
		return nil
	}

	var objectMap map[string]any
	switch v := object.(type) {
	case map[string]any:
		objectMap = v
	default:
		objectJSON, _ := json.Marshal(object)
		if err := json.Unmarshal(objectJSON, &objectMap); err != nil {
			return nil
		}
	}

	fields := strings.Split(dotSeparatedField, ".")
	var field any = objectMap

	for _, currentField := range fields {
		if field == nil {
			return nil
		}

		if i, err := strconv.Atoi(currentField); err == nil {
			if arr, ok := field.([]any); ok && i < len(arr) {
				field = arr[i]
			} else {
				return nil
			}
		} else {
			if m, ok := field.(map[string]any); ok {
				field = m[currentField]
			} else {
				return nil
			}
		}
	}

	return field
}
