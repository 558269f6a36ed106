package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	settings := Load()

	assert.Equal(t, "uploads", settings.BucketName)
	assert.Equal(t, "./tmp/blob", settings.BucketRootPath)
	assert.Equal(t, "processing_results", settings.TableName)
	assert.Equal(t, "./tmp/results.json", settings.TablePersistencePath)
	assert.Equal(t, 4, settings.ProcessorWorkers)
	assert.Equal(t, "info", settings.LogLevel)
	assert.Equal(t, ":8080", settings.ListenAddr)
	assert.Nil(t, settings.ValkeyNodes)
	assert.Empty(t, settings.MemcachedAddr)
	assert.Nil(t, settings.KafkaBrokers)
	assert.Nil(t, settings.ScyllaNodes)
	assert.Empty(t, settings.S3Endpoint)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BUCKET_NAME", "custom-bucket")
	t.Setenv("TABLE_NAME", "custom-table")
	t.Setenv("PROCESSOR_WORKER_COUNT", "8")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LISTEN_ADDR", ":9090")

	settings := Load()

	assert.Equal(t, "custom-bucket", settings.BucketName)
	assert.Equal(t, "custom-table", settings.TableName)
	assert.Equal(t, 8, settings.ProcessorWorkers)
	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, ":9090", settings.ListenAddr)
}

func TestWorkerCountRejectsInvalidValues(t *testing.T) {
	for _, value := range []string{"0", "-3", "abc", "", "  "} {
		t.Setenv("PROCESSOR_WORKER_COUNT", value)
		assert.Equal(t, 4, Load().ProcessorWorkers, "value %q", value)
	}
}

func TestBlankOptionalDisablesPersistence(t *testing.T) {
	t.Setenv("BUCKET_ROOT_PATH", "")
	t.Setenv("TABLE_PERSISTENCE_PATH", "   ")

	settings := Load()

	assert.Empty(t, settings.BucketRootPath)
	assert.Empty(t, settings.TablePersistencePath)
}

func TestListParsing(t *testing.T) {
	t.Setenv("VALKEY_NODES", "node1:6379, node2:6379 ,,node3:6379")
	t.Setenv("KAFKA_BROKERS", "broker:9092")

	settings := Load()

	assert.Equal(t, []string{"node1:6379", "node2:6379", "node3:6379"}, settings.ValkeyNodes)
	assert.Equal(t, []string{"broker:9092"}, settings.KafkaBrokers)
}
