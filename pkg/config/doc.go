// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	PDFGPT_HOST="0.0.0.0"
//	PDFGPT_PORT="8080"
//	PDFGPT_HEALTH_PORT="9090"
//	PDFGPT_BASE_URL="https://app.pdf-gpt.example"
//	PDFGPT_MAX_UPLOAD_BYTES="52428800"
//
// Database and cache settings:
//
//	PDFGPT_POSTGRES_URL="postgres://localhost/pdfgpt"
//	PDFGPT_POSTGRES_MAX_CONNS="20"
//	PDFGPT_REDIS_URL="localhost:6379"
//
// Blob storage settings:
//
//	PDFGPT_STORAGE_TYPE="s3"  # filesystem or s3
//	PDFGPT_FILESYSTEM_ROOT="/var/pdfgpt/data"
//	PDFGPT_S3_BUCKET="pdfgpt-files"
//	PDFGPT_S3_REGION="us-east-1"
//
// Session settings:
//
//	PDFGPT_SESSION_TTL="720h"
//	PDFGPT_SESSION_REFRESH_INTERVAL="5m"
//	PDFGPT_SESSION_STALENESS_WINDOW="15m"
//
// Identity provider settings:
//
//	PDFGPT_GOOGLE_CLIENT_ID="..."
//	PDFGPT_GOOGLE_CLIENT_SECRET="..."
//	PDFGPT_GITHUB_CLIENT_ID="..."
//	PDFGPT_GITHUB_CLIENT_SECRET="..."
//
// Observability settings:
//
//	PDFGPT_LOG_LEVEL="info"  # debug, info, warn, error
//	PDFGPT_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Related Packages
//
//   - pkg/storage: Uses blob storage configuration
//   - pkg/observability: Uses observability configuration
package config
