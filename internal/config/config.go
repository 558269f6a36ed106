// Package config loads service settings from environment variables.
// Every value has a documented default; malformed numeric values fall
// back to the default instead of failing startup.
package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	bucketNameEnv   = "BUCKET_NAME"
	bucketRootEnv   = "BUCKET_ROOT_PATH"
	tableNameEnv    = "TABLE_NAME"
	tablePathEnv    = "TABLE_PERSISTENCE_PATH"
	workerCountEnv  = "PROCESSOR_WORKER_COUNT"
	logLevelEnv     = "LOG_LEVEL"
	listenAddrEnv   = "LISTEN_ADDR"
	valkeyNodesEnv  = "VALKEY_NODES"
	memcachedEnv    = "MEMCACHED_ADDR"
	kafkaBrokersEnv = "KAFKA_BROKERS"
	scyllaNodesEnv  = "SCYLLA_NODES"
	s3EndpointEnv   = "S3_ENDPOINT"
	s3AccessKeyEnv  = "S3_ACCESS_KEY"
	s3SecretKeyEnv  = "S3_SECRET_KEY"
	s3BucketEnv     = "S3_BUCKET"
)

type Settings struct {
	BucketName           string
	BucketRootPath       string
	TableName            string
	TablePersistencePath string
	ProcessorWorkers     int
	LogLevel             string
	ListenAddr           string

	// Optional backends; empty means the in-memory default is used.
	ValkeyNodes   []string
	MemcachedAddr string
	KafkaBrokers  []string
	ScyllaNodes   []string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
}

func Load() Settings {
	return Settings{
		BucketName:           readString(bucketNameEnv, "uploads"),
		BucketRootPath:       readOptional(bucketRootEnv, "./tmp/blob"),
		TableName:            readString(tableNameEnv, "processing_results"),
		TablePersistencePath: readOptional(tablePathEnv, "./tmp/results.json"),
		ProcessorWorkers:     readPositiveInt(workerCountEnv, 4),
		LogLevel:             readString(logLevelEnv, "info"),
		ListenAddr:           readString(listenAddrEnv, ":8080"),
		ValkeyNodes:          readList(valkeyNodesEnv),
		MemcachedAddr:        readOptional(memcachedEnv, ""),
		KafkaBrokers:         readList(kafkaBrokersEnv),
		ScyllaNodes:          readList(scyllaNodesEnv),
		S3Endpoint:           readOptional(s3EndpointEnv, ""),
		S3AccessKey:          readOptional(s3AccessKeyEnv, ""),
		S3SecretKey:          readOptional(s3SecretKeyEnv, ""),
		S3Bucket:             readOptional(s3BucketEnv, ""),
	}
}

func readString(name, def string) string {
	value, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	if candidate := strings.TrimSpace(value); candidate != "" {
		return candidate
	}
	return def
}

// readOptional treats a set-but-blank variable as explicitly disabled.
func readOptional(name, def string) string {
	value, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	return strings.TrimSpace(value)
}

func readPositiveInt(name string, def int) int {
	value, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	candidate := strings.TrimSpace(value)
	if candidate == "" {
		return def
	}
	parsed, err := strconv.Atoi(candidate)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func readList(name string) []string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
