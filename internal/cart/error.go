package cart

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUserNotAuthenticated = errors.New("user not authenticated")

	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 100")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrProductRequired = errors.New("product is required")
	ErrDesignRequired  = errors.New("design image is required")
	ErrDuplicateItemID = errors.New("duplicate cart item id")

	// -- Resource State --
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrProductNotFound  = errors.New("product not found")
)
