package ddblocal

import "time"

// Default configuration values for NewRegistry.
// These constants are exported so callers can reference the defaults
// when building custom configurations relative to them (e.g.,
// 2 * DefaultInstallTimeout).
const (
	// DefaultSourceURL answers with a redirect to the latest DynamoDB Local
	// archive.
	DefaultSourceURL = "http://dynamodb-local.s3-website-us-west-2.amazonaws.com/dynamodb_local_latest.tar.gz"

	// DefaultInstallDirName is the directory name under the system temp
	// directory where the archive is unpacked. The full path is computed
	// as filepath.Join(os.TempDir(), DefaultInstallDirName).
	DefaultInstallDirName = "dynamodb-local"

	// DefaultAssetName is the emulator jar. Its presence in the install
	// directory means the emulator is installed.
	DefaultAssetName = "DynamoDBLocal.jar"

	// DefaultLibraryDir holds the native SQLite libraries shipped in the
	// archive, relative to the install directory.
	DefaultLibraryDir = "./DynamoDBLocal_lib"

	// DefaultJavaBinary is the binary name used to locate java in PATH.
	DefaultJavaBinary = "java"

	// DefaultInstallTimeout bounds one download and unpack of the archive.
	DefaultInstallTimeout = 10 * time.Minute

	// DefaultReadyTimeout disables the readiness probe: Launch returns as
	// soon as the JVM has been spawned.
	DefaultReadyTimeout time.Duration = 0

	// DefaultReadyPollInterval is the interval between readiness probes
	// when a readiness timeout is configured.
	DefaultReadyPollInterval = 100 * time.Millisecond

	// DefaultStopTimeout bounds how long Relaunch and Shutdown wait for a
	// killed process to exit.
	DefaultStopTimeout = 10 * time.Second
)
