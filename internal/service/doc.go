// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and the document
// stores (defined in internal/store) to fulfill application features.
//
// Key components:
//
//  1. TaskService: task CRUD, marking done, logical delete, and paginated
//     listing with an optional active filter.
//  2. CommentService: comment CRUD and listing, scoped to a parent task that
//     must exist and not be deleted.
//  3. AccountService: registration, lookup, and login to an access token.
//
// Every read is scoped to an account ID. A resource that is absent, deleted,
// or owned by another account is reported as a *NotFoundError.
//
// Error handling:
//   - Expected conditions are sentinel or typed errors (ErrNotFound,
//     *BadRequestError, ErrAccountExists, ErrInvalidCredentials) that callers
//     check with errors.Is / errors.As.
//   - Unexpected failures are wrapped in *ServiceError with the operation name.
//   - The API layer maps these to HTTP status codes.
package service
