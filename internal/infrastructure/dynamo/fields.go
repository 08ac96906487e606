package dynamo

// DynamoDB attribute names used in update expressions issued by the repos themselves.
// Services keep their own constants for the partial update maps they build.
const (
	fieldUpdatedAt     = "updated_at"
	fieldLastLogin     = "last_login"
	fieldImageURL      = "image_url"
	fieldAverageRating = "average_rating"
	fieldTotalRatings  = "total_ratings"
)
