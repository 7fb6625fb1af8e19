package mathx

func Add(a, b int) int { return a + b }

func Sub(a, b int) int { return a - b }

// Mul is off by one; TestMul fails.
func Mul(a, b int) int { return a*b + 1 }
