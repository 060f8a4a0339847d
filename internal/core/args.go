package core

import "strconv"

// BuildArgs returns the JVM argument vector for req:
//
//	-Djava.library.path=<libDir> -jar <asset> -port <port> (-inMemory | -dbPath <path>) <extra...>
//
// The extra arguments are copied so later changes to req do not leak into
// a running handle.
func BuildArgs(libDir, asset string, req LaunchRequest) []string {
	args := make([]string, 0, 7+len(req.ExtraArgs))
	args = append(args,
		"-Djava.library.path="+libDir,
		"-jar", asset,
		"-port", strconv.Itoa(req.Port),
	)
	if req.DBPath == "" {
		args = append(args, "-inMemory")
	} else {
		args = append(args, "-dbPath", req.DBPath)
	}
	return append(args, req.ExtraArgs...)
}
