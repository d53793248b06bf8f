// internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	dbout "storefront/internal/adapters/out/db"
	"storefront/internal/adapters/out/identity"
	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/database"
	firestoreinfra "storefront/internal/infra/firestore"
	"storefront/internal/infra/logging"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager/Postgres)
// - owns optional adapters whose construction needs a live client (ledger, password verifier)
//
// IMPORTANT:
// Infra must NOT depend on routers or handlers.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string

	// Clients (owned; Close-managed)
	Firestore     *firestoreinfra.ClientWrapper
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	DB            *database.DB

	// Optional adapters (nil = feature disabled)
	Ledger           *dbout.OrderLedgerPG
	PasswordVerifier *identity.PasswordVerifier

	// Resolved once
	SendGridAPIKey string
}

// NewInfra initializes shared infra.
// Firestore/GCS are strict (return error).
// Firebase/Auth, SecretManager, Postgres and the password verifier are best-effort (warn + continue).
func NewInfra(ctx context.Context, cfg *appcfg.Config) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}
	log := logging.For("shared.infra")

	projectID := strings.TrimSpace(cfg.FirestoreProjectID)
	if projectID == "" {
		// Firestore/NewApp become unstable without a project; treat as hard error.
		return nil, errors.New("shared.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	inf := &Infra{Config: cfg, ProjectID: projectID}

	// Credentials file (optional; mainly for local dev)
	var clientOpts []option.ClientOption
	if credFile := strings.TrimSpace(cfg.CredentialsFile); credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Infof("[shared.infra] Using credentials file for GCP clients: %s", redactPath(credFile))
	} else {
		log.Info("[shared.infra] Using Application Default Credentials (no credentials file configured)")
	}

	// 1) Firestore (strict)
	fs, err := firestoreinfra.NewClient(ctx, projectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("shared.infra: firestore (project=%s): %w", projectID, err)
	}
	inf.Firestore = fs

	// 2) GCS (strict)
	gcsClient, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		_ = inf.Close()
		return nil, fmt.Errorf("shared.infra: storage.NewClient failed: %w", err)
	}
	inf.GCS = gcsClient
	if strings.TrimSpace(cfg.ProductImageBucket) == "" {
		log.Warn("[shared.infra] WARN: PRODUCT_IMAGE_BUCKET is empty (image upload will fail)")
	}

	// 3) Firebase App/Auth (best-effort)
	fbProject := strings.TrimSpace(cfg.FirebaseProjectID)
	if fbProject == "" {
		fbProject = projectID
	}
	if app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: fbProject}, clientOpts...); err != nil {
		log.Warnf("[shared.infra] WARN: firebase app init failed: %v", err)
	} else {
		inf.FirebaseApp = app
		if authClient, err := app.Auth(ctx); err != nil {
			log.Warnf("[shared.infra] WARN: firebase auth init failed: %v", err)
		} else {
			inf.FirebaseAuth = authClient
			log.Info("[shared.infra] Firebase Auth initialized")
		}
	}

	// 4) Secret Manager (best-effort; only needed to resolve the SendGrid key)
	inf.SendGridAPIKey = strings.TrimSpace(cfg.SendGridAPIKey)
	if inf.SendGridAPIKey == "" && strings.TrimSpace(cfg.SendGridAPIKeySecret) != "" {
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Warnf("[shared.infra] WARN: secretmanager.NewClient failed: %v (mail disabled)", err)
		} else {
			inf.SecretManager = sm
			inf.SendGridAPIKey = resolveSecret(ctx, sm, cfg.SendGridAPIKeySecret, log)
		}
	}

	// 5) Postgres order ledger (optional)
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		db, err := database.NewConnection(ctx, dsn)
		if err != nil {
			log.Warnf("[shared.infra] WARN: postgres unavailable: %v (order ledger disabled)", err)
		} else {
			ledger := dbout.NewOrderLedgerPG(db.Client)
			if err := ledger.EnsureSchema(ctx); err != nil {
				log.Warnf("[shared.infra] WARN: ledger schema: %v (order ledger disabled)", err)
				_ = db.Close()
			} else {
				inf.DB = db
				inf.Ledger = ledger
				log.Info("[shared.infra] order ledger enabled")
			}
		}
	} else {
		log.Info("[shared.infra] DATABASE_URL empty (order ledger disabled)")
	}

	// 6) Password verifier (optional)
	if key := strings.TrimSpace(cfg.FirebaseAPIKey); key != "" {
		pv, err := identity.NewPasswordVerifier(ctx, key)
		if err != nil {
			log.Warnf("[shared.infra] WARN: password verifier init failed: %v", err)
		} else {
			inf.PasswordVerifier = pv
		}
	} else {
		log.Warn("[shared.infra] FIREBASE_API_KEY empty: login will not check passwords")
	}

	return inf, nil
}

// resolveSecret reads one secret version; an empty string disables the dependent feature.
func resolveSecret(ctx context.Context, sm *secretmanager.Client, name string, log *logrus.Entry) string {
	name = secretVersionName(name)
	resp, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		log.Warnf("[shared.infra] WARN: AccessSecretVersion failed (%s): %v", name, err)
		return ""
	}
	if resp.GetPayload() == nil {
		return ""
	}
	return strings.TrimSpace(string(resp.GetPayload().GetData()))
}

// secretVersionName pins a bare secret name to its latest version.
func secretVersionName(name string) string {
	name = strings.TrimSpace(name)
	if !strings.Contains(name, "/versions/") {
		name = strings.TrimRight(name, "/") + "/versions/latest"
	}
	return name
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	if i.DB != nil {
		_ = i.DB.Close()
	}
	return nil
}

func redactPath(p string) string {
	// Do not log full path (Windows/Unix compatible light masking)
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return "***"
	}
	return "***/" + last
}
