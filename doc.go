// Package main is the entry point of GoAssetAdmin, a service tracking client software licenses and equipment.
// It scans for assets reaching a user's alert thresholds, stores in-app notifications and emails them,
// and serves a JSON API over fiber with role based access control.
package main
