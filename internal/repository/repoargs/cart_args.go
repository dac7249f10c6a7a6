package repoargs

type CartUpsert struct {
	UserID    int64
	ProductID int64
	Quantity  int32
}
