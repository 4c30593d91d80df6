// Package docs registers the OpenAPI description served by the swagger UI.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@seeran-grades.com"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {"tags": ["health"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"], "summary": "User login",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.LoginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "404": {"description": "User does not exist", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/auth/signin": {
            "post": {
                "tags": ["activation"], "summary": "Request account activation",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.SignInRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.SignInResponse"}},
                    "400": {"description": "Missing fields or invalid credentials", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "500": {"description": "Email not sent", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/auth/resend-otp": {
            "post": {
                "tags": ["activation"], "summary": "Resend activation code",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.EmailRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}},
                    "400": {"description": "Unknown email", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/auth/verify-otp": {
            "post": {
                "tags": ["activation"], "summary": "Verify activation code",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.VerifyOTPRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}},
                    "400": {"description": "Missing, expired or incorrect code", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/auth/set-password": {
            "post": {
                "tags": ["activation"], "summary": "Set account password",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.SetPasswordRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}},
                    "400": {"description": "Missing proof, mismatch, expired or incorrect code", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "404": {"description": "User does not exist", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/auth/credentials": {
            "get": {
                "tags": ["auth"], "summary": "Current user credentials",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.CredentialsResponse"}},
                    "406": {"description": "Invalid access token", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/auth/account-status": {
            "post": {
                "tags": ["activation"], "summary": "Account activation status",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.EmailRequest"}}],
                "responses": {
                    "200": {"description": "Account not activated", "schema": {"$ref": "#/definitions/auth.AccountStatusResponse"}},
                    "400": {"description": "Unknown email", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "403": {"description": "Account already activated", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["auth"], "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.LoginResponse"}},
                    "401": {"description": "Invalid or expired refresh token", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"], "summary": "User logout",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}}}
            }
        },
        "/auth/change-password": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"], "summary": "Change password",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.ChangePasswordRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}},
                    "400": {"description": "Incorrect or mismatched password", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/users/me/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"], "summary": "Own profile",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/profile.Response"}}}
            }
        },
        "/users/me/balance": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"], "summary": "Own balance",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/balance.Balance"}},
                    "404": {"description": "No balance recorded", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/email-bans": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["email-bans"], "summary": "Own email bans",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/emailban.BansResponse"}}}
            }
        },
        "/email-bans/{banID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["email-bans"], "summary": "One email ban",
                "parameters": [{"in": "path", "name": "banID", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/emailban.BanResponse"}},
                    "400": {"description": "Invalid email ban id", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/email-bans/{banID}/appeal": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["email-bans"], "summary": "Appeal an email ban",
                "parameters": [
                    {"in": "path", "name": "banID", "type": "string", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/emailban.AppealRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}},
                    "400": {"description": "Invalid id, missing appeal or already appealed", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/email-bans/appeals": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["email-bans"], "summary": "Pending appeals",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/emailban.AppealsResponse"}},
                    "403": {"description": "Founder access required", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/email-bans/appeals/{banID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["email-bans"], "summary": "One appeal",
                "parameters": [{"in": "path", "name": "banID", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/emailban.AppealResponse"}},
                    "400": {"description": "Invalid email ban id", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "auth.LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "auth.LoginResponse": {"type": "object", "properties": {"message": {"type": "string"}, "role": {"type": "string"}}},
        "auth.SignInRequest": {"type": "object", "properties": {"name": {"type": "string"}, "surname": {"type": "string"}, "email": {"type": "string"}}},
        "auth.SignInResponse": {"type": "object", "properties": {"message": {"type": "string"}, "email": {"type": "string"}}},
        "auth.EmailRequest": {"type": "object", "properties": {"email": {"type": "string"}}},
        "auth.VerifyOTPRequest": {"type": "object", "properties": {"email": {"type": "string"}, "otp": {"type": "string"}}},
        "auth.SetPasswordRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "confirmpassword": {"type": "string"}}},
        "auth.CredentialsResponse": {"type": "object", "properties": {"name": {"type": "string"}, "surname": {"type": "string"}}},
        "auth.AccountStatusResponse": {"type": "object", "properties": {"message": {"type": "string"}, "state": {"type": "string", "example": "otp_sent"}}},
        "auth.ChangePasswordRequest": {"type": "object", "properties": {"previous_password": {"type": "string"}, "new_password": {"type": "string"}, "confirm_password": {"type": "string"}}},
        "profile.Response": {"type": "object", "properties": {"name": {"type": "string"}, "surname": {"type": "string"}, "email": {"type": "string"}, "id": {"type": "string"}, "role": {"type": "string"}, "image": {"type": "string"}}},
        "balance.Balance": {"type": "object", "properties": {"amount": {"type": "string"}, "last_updated": {"type": "string"}}},
        "emailban.Ban": {"type": "object", "properties": {"ban_id": {"type": "string"}, "email": {"type": "string"}, "reason": {"type": "string"}, "status": {"type": "string"}, "appeal": {"type": "string"}, "banned_at": {"type": "string"}, "appealed_at": {"type": "string"}}},
        "emailban.AppealRequest": {"type": "object", "properties": {"appeal": {"type": "string"}}},
        "emailban.BansResponse": {"type": "object", "properties": {"email_bans": {"type": "array", "items": {"$ref": "#/definitions/emailban.Ban"}}}},
        "emailban.BanResponse": {"type": "object", "properties": {"email_ban": {"$ref": "#/definitions/emailban.Ban"}}},
        "emailban.AppealsResponse": {"type": "object", "properties": {"appeals": {"type": "array", "items": {"$ref": "#/definitions/emailban.Ban"}}}},
        "emailban.AppealResponse": {"type": "object", "properties": {"appeal": {"$ref": "#/definitions/emailban.Ban"}}},
        "httputil.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "string"}}},
        "httputil.MessageResponse": {"type": "object", "properties": {"message": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Seeran Grades API",
	Description:      "Account activation, session and email ban endpoints of the Seeran Grades backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
