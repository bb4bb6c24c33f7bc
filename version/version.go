package version

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"user-accounts-backend/response"
)

// Version information
var (
	// Version is the current version of the application
	Version    = "0.1.0"
	GoVersion  = runtime.Version()
	ServerCode = "ACCOUNTS_SERVER_0.1.0"
)

// GetInfoResponse holds all version information
type GetInfoResponse struct {
	Version      string `json:"version"`
	GoVersion    string `json:"go_version"`
	ServerCode   string `json:"server_code"`
	ServerEnv    string `json:"server_env"`
	DatabaseName string `json:"database_name"`
}

// GetInfo returns version information for the running environment.
func GetInfo(env, databaseName string) GetInfoResponse {
	return GetInfoResponse{
		Version:      Version,
		GoVersion:    GoVersion,
		ServerCode:   ServerCode,
		ServerEnv:    env,
		DatabaseName: databaseName,
	}
}

func Handler(env, databaseName string) gin.HandlerFunc {
	info := GetInfo(env, databaseName)
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.Success(http.StatusOK, "Server info", info))
	}
}
