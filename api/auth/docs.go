// Package auth registers the OpenAPI document served under /swagger/.
// Regenerate with: swag init -g internal/auth/http/router.go -o api/auth --packageName auth
package auth

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/token": {
            "post": {
                "description": "Mints an access token and a single-use refresh token for a user. Trusted callers only.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tokens"],
                "summary": "Issue a token pair",
                "parameters": [
                    {"type": "string", "description": "Issuer API key", "name": "X-Issuer-Key", "in": "header", "required": true},
                    {"description": "Subject, roles and extra claims", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.IssueTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.TokenResponse"}},
                    "400": {"description": "10000 invalid request", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "401": {"description": "10001 invalid issuer key", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "429": {"description": "10429 rate limited", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "503": {"description": "10500 store unavailable", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/v1/token/refresh": {
            "post": {
                "description": "Exchanges an access token (expired or not) and its refresh token for a new pair.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tokens"],
                "summary": "Refresh a token pair",
                "parameters": [
                    {"description": "Current pair", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.TokenResponse"}},
                    "400": {"description": "10000 invalid request", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "401": {"description": "10003 invalid refresh token", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "503": {"description": "10500 store unavailable", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/v1/token/revoke": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Deletes the refresh token bound to the presented access token. Idempotent.",
                "produces": ["application/json"],
                "tags": ["Tokens"],
                "summary": "Revoke the refresh token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.SuccessBody"}},
                    "401": {"description": "10001 unauthorized", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "503": {"description": "10500 store unavailable", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/v1/temporary-tokens": {
            "post": {
                "description": "Stores a single-use token bound to a usage. Trusted callers only.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Temporary tokens"],
                "summary": "Issue a temporary token",
                "parameters": [
                    {"type": "string", "description": "Issuer API key", "name": "X-Issuer-Key", "in": "header", "required": true},
                    {"description": "User, usage and optional lifetime", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.TemporaryTokenRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/authsdk.TemporaryTokenResponse"}},
                    "400": {"description": "10000 invalid request", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "401": {"description": "10001 invalid issuer key", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "503": {"description": "10500 store unavailable", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/v1/temporary-tokens/validate": {
            "post": {
                "description": "Returns the user the token was issued for and deletes it.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Temporary tokens"],
                "summary": "Validate and consume a temporary token",
                "parameters": [
                    {"description": "Token and expected usage", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.ValidateTemporaryTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.ValidateTemporaryTokenResponse"}},
                    "400": {"description": "10004 expired or used, 10005 usage mismatch", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "503": {"description": "10500 store unavailable", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/v1/userinfo": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns subject, roles and extra claims of the presented access token.",
                "produces": ["application/json"],
                "tags": ["Identity"],
                "summary": "Get the current principal",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.UserInfoResponse"}},
                    "401": {"description": "10001 unauthorized", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "403": {"description": "10002 forbidden", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/.well-known/jwks.json": {
            "get": {
                "description": "Returns the JSON Web Key Set used to verify RS256 access tokens.",
                "produces": ["application/json"],
                "tags": ["well-known"],
                "summary": "Get JWKS",
                "responses": {"200": {"description": "The JSON Web Key Set"}}
            }
        },
        "/livez": {
            "get": {
                "description": "Liveness probe endpoint returning basic service health status, uptime, and version information",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {"200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}}
            }
        },
        "/readyz": {
            "get": {
                "description": "Readiness probe endpoint returning service health status and checks for critical dependencies",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}},
                    "503": {"description": "service not ready", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "authsdk.Claim": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "type": {"type": "string", "maxLength": 128, "example": "tenant"},
                "value": {"type": "string", "maxLength": 1024, "example": "acme"}
            }
        },
        "authsdk.IssueTokenRequest": {
            "type": "object",
            "required": ["user_id"],
            "properties": {
                "user_id": {"type": "string", "maxLength": 256, "example": "alice"},
                "roles": {"type": "array", "maxItems": 64, "items": {"type": "string"}, "example": ["admin"]},
                "claims": {"type": "array", "maxItems": 64, "items": {"$ref": "#/definitions/authsdk.Claim"}}
            }
        },
        "authsdk.RefreshTokenRequest": {
            "type": "object",
            "required": ["access_token", "refresh_token"],
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"}
            }
        },
        "authsdk.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "token_type": {"type": "string", "example": "Bearer"},
                "expires_in": {"type": "integer", "example": 10800}
            }
        },
        "authsdk.TemporaryTokenRequest": {
            "type": "object",
            "required": ["user_id", "usage"],
            "properties": {
                "user_id": {"type": "string", "maxLength": 256, "example": "alice"},
                "usage": {"type": "string", "maxLength": 64, "example": "reset_password"},
                "ttl_seconds": {"type": "integer", "minimum": 1, "maximum": 86400, "example": 300}
            }
        },
        "authsdk.TemporaryTokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_in": {"type": "integer", "example": 300}
            }
        },
        "authsdk.ValidateTemporaryTokenRequest": {
            "type": "object",
            "required": ["token", "usage"],
            "properties": {
                "token": {"type": "string"},
                "usage": {"type": "string", "maxLength": 64, "example": "reset_password"}
            }
        },
        "authsdk.ValidateTemporaryTokenResponse": {
            "type": "object",
            "properties": {"user_id": {"type": "string", "example": "alice"}}
        },
        "authsdk.UserInfoResponse": {
            "type": "object",
            "properties": {
                "sub": {"type": "string", "example": "alice"},
                "roles": {"type": "array", "items": {"type": "string"}, "example": ["admin"]},
                "claims": {"type": "array", "items": {"$ref": "#/definitions/authsdk.Claim"}}
            }
        },
        "authsdk.HealthChecks": {
            "type": "object",
            "properties": {
                "store": {"type": "string"},
                "signer": {"type": "string"}
            }
        },
        "authsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/authsdk.HealthChecks"}
            }
        },
        "httpx.SuccessBody": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "success"},
                "data": {}
            }
        },
        "httpx.ErrorBody": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "error"},
                "code": {"type": "integer", "example": 10001},
                "message": {"type": "string", "example": "Unauthorized."},
                "errors": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT access token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "tokenauth API",
	Description:      "Issues JWT access tokens with single-use refresh tokens, and single-use temporary tokens.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
