package rpc

const (
	rpcAPICurrentVersion      = 1
	rpcAPIMinSupportedVersion = 1
	rpcNotificationVersion    = 1

	codeAPIVersionUnsupported = -32080
	codeAPIVersionDeprecated  = -32081
)

// validateRPCAPIVersion accepts an absent version as current.
func validateRPCAPIVersion(v *int) *rpcError {
	switch {
	case v == nil:
		return nil
	case *v < rpcAPIMinSupportedVersion:
		return &rpcError{Code: codeAPIVersionDeprecated, Message: "rpc api version is deprecated and no longer supported"}
	case *v > rpcAPICurrentVersion:
		return &rpcError{Code: codeAPIVersionUnsupported, Message: "rpc api version is not supported by this server"}
	default:
		return nil
	}
}

type versionInfo struct {
	CurrentVersion      int      `json:"current_version"`
	MinSupportedVersion int      `json:"min_supported_version"`
	NotificationVersion int      `json:"notification_version"`
	Methods             []string `json:"methods"`
}

func rpcVersionInfo(methods []string) versionInfo {
	return versionInfo{
		CurrentVersion:      rpcAPICurrentVersion,
		MinSupportedVersion: rpcAPIMinSupportedVersion,
		NotificationVersion: rpcNotificationVersion,
		Methods:             methods,
	}
}
