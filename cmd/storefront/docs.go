package main

// @title Furniture Storefront API
// @version 1.0
// @description Storefront backend for the furniture catalog: visitor favorites, catalog pages, contact form and admin console

// @contact.name API Support
// @contact.email support@example.com

// @host localhost:8080
// @BasePath /

// @tag.name Favorites
// @tag.description Per-visitor favorites, scoped by the visitor_id cookie

// @tag.name Catalog
// @tag.description Public catalog pages and the contact form

// @tag.name Admin
// @tag.description Admin console; requires a session established by /admin/login

// @tag.name Health
// @tag.description Health check endpoints
