package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           cardgend API
// @version         1.0
// @description     HTTP proxy generating Adaptive Card JSON from free-text descriptions.
//
// @contact.name   cardgend maintainers
// @contact.url    https://github.com/your-org/cardgend
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
