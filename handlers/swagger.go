package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRoutes) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>portfolio-backend - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "portfolio-backend", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Error": { "type": "object", "properties": { "success": { "type": "boolean" }, "message": { "type": "string" }, "errors": { "type": "array", "items": { "type": "string" } } } },
      "Contact": { "type": "object", "properties": { "id": { "type": "string" }, "name": { "type": "string" }, "email": { "type": "string" }, "company": { "type": "string" }, "message": { "type": "string" }, "status": { "type": "string", "enum": ["new", "read", "replied"] }, "createdAt": { "type": "string", "format": "date-time" } } }
    }
  },
  "paths": {
    "/api/contato": {
      "post": {
        "summary": "Submit the contact form",
        "requestBody": { "content": { "application/json": { "schema": { "type": "object", "required": ["nome", "email", "mensagem"], "properties": { "nome": { "type": "string", "maxLength": 100 }, "email": { "type": "string" }, "empresa": { "type": "string", "maxLength": 100 }, "mensagem": { "type": "string", "maxLength": 1000 } } } } } },
        "responses": { "201": { "description": "stored" }, "400": { "description": "invalid input" }, "429": { "description": "too many submissions" } }
      }
    },
    "/api/admin/login": {
      "post": {
        "summary": "Admin login",
        "requestBody": { "content": { "application/json": { "schema": { "type": "object", "properties": { "email": { "type": "string" }, "password": { "type": "string" } } } } } },
        "responses": { "200": { "description": "token returned" }, "400": { "description": "missing fields" }, "401": { "description": "invalid credentials" }, "429": { "description": "too many attempts" } }
      }
    },
    "/api/admin/verify": {
      "get": { "summary": "Check the bearer token", "security": [{ "bearer": [] }], "responses": { "200": { "description": "token valid" }, "401": { "description": "missing or invalid token" } } }
    },
    "/api/admin/logout": {
      "post": { "summary": "Revoke the bearer token", "security": [{ "bearer": [] }], "responses": { "200": { "description": "logged out" }, "401": { "description": "missing or invalid token" } } }
    },
    "/api/admin/contatos": {
      "get": {
        "summary": "List contacts, newest first",
        "security": [{ "bearer": [] }],
        "parameters": [
          { "name": "page", "in": "query", "schema": { "type": "integer", "default": 1 } },
          { "name": "limit", "in": "query", "schema": { "type": "integer", "default": 10, "maximum": 100 } },
          { "name": "status", "in": "query", "schema": { "type": "string", "enum": ["todos", "new", "read", "replied"] } }
        ],
        "responses": { "200": { "description": "one page of contacts" } }
      }
    },
    "/api/admin/contatos/{id}/status": {
      "patch": {
        "summary": "Set the review status of a contact",
        "security": [{ "bearer": [] }],
        "parameters": [{ "name": "id", "in": "path", "required": true, "schema": { "type": "string" } }],
        "requestBody": { "content": { "application/json": { "schema": { "type": "object", "properties": { "status": { "type": "string", "enum": ["new", "read", "replied"] } } } } } },
        "responses": { "200": { "description": "updated contact" }, "400": { "description": "invalid status" }, "404": { "description": "contact not found" } }
      }
    },
    "/api/admin/contatos/{id}": {
      "delete": {
        "summary": "Delete a contact",
        "security": [{ "bearer": [] }],
        "parameters": [{ "name": "id", "in": "path", "required": true, "schema": { "type": "string" } }],
        "responses": { "200": { "description": "deleted" }, "404": { "description": "contact not found" } }
      }
    },
    "/api/admin/stats": {
      "get": { "summary": "Contact counts by status and for the last 7 days", "security": [{ "bearer": [] }], "responses": { "200": { "description": "stats" } } }
    },
    "/api/admin/export": {
      "get": { "summary": "Download all contacts as CSV", "security": [{ "bearer": [] }], "responses": { "200": { "description": "CSV file", "content": { "text/csv": {} } } } }
    },
    "/api/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/api/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "exposition format" } } } }
  }
}`
