// Package firestore implements the document store port against the hosted
// Google Firestore REST API.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"iuran/internal/docstore"

	fs "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
)

type Client struct {
	svc        *fs.Service
	projectID  string
	databaseID string
}

var _ docstore.Store = (*Client)(nil)

// NewFromEnv creates a Firestore client using environment variables.
// Required: FIRESTORE_PROJECT_ID
// Optional: FIRESTORE_DATABASE_ID (default "(default)")
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	projectID := strings.TrimSpace(os.Getenv("FIRESTORE_PROJECT_ID"))
	if projectID == "" {
		return nil, errors.New("missing FIRESTORE_PROJECT_ID")
	}
	databaseID := strings.TrimSpace(os.Getenv("FIRESTORE_DATABASE_ID"))
	if databaseID == "" {
		databaseID = "(default)"
	}

	svc, err := newFirestoreService(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore service: %w", err)
	}

	return &Client{svc: svc, projectID: projectID, databaseID: databaseID}, nil
}

// newFirestoreService initializes the Firestore Service using Service Account
// credentials from the environment.
func newFirestoreService(ctx context.Context) (*fs.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := fs.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(fs.DatastoreScope))
	if err != nil {
		return nil, fmt.Errorf("create firestore service: %w", err)
	}

	slog.InfoContext(ctx, "Firestore service created", "credentials_size", len(credentialsJSON))
	return service, nil
}

func (c *Client) documentName(collection, id string) string {
	return fmt.Sprintf("projects/%s/databases/%s/documents/%s/%s",
		c.projectID, c.databaseID, collection, id)
}

func (c *Client) Get(ctx context.Context, collection, id string) (docstore.Document, bool, error) {
	if c.svc == nil {
		return nil, false, errors.New("firestore service not initialized")
	}

	doc, err := c.svc.Projects.Databases.Documents.Get(c.documentName(collection, id)).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}

	return decodeFields(doc.Fields), true, nil
}

// SetMerge patches the document with an update mask of the partial's leaf
// field paths. Firestore merges masked writes field by field, which matches
// the port's deep-merge contract; the document is created when absent.
func (c *Client) SetMerge(ctx context.Context, collection, id string, partial docstore.Document) error {
	if c.svc == nil {
		return errors.New("firestore service not initialized")
	}

	fields, err := encodeFields(partial)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}

	call := c.svc.Projects.Databases.Documents.Patch(
		c.documentName(collection, id),
		&fs.Document{Fields: fields},
	)
	call.UpdateMaskFieldPaths(leafFieldPaths(partial)...)

	if _, err := call.Context(ctx).Do(); err != nil {
		return fmt.Errorf("patch document %s/%s: %w", collection, id, err)
	}

	slog.DebugContext(ctx, "Firestore document patched",
		"collection", collection,
		"doc_id", id,
		"fields", len(fields))
	return nil
}
