package frequency

// IsPrime reports whether n is prime, trial-dividing by odd numbers up to √n.
func IsPrime(n int64) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	for i := int64(3); i <= n/i; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// IsPrime6k is IsPrime with 6k±1 stepping. Both return the same result for every n.
func IsPrime6k(n int64) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := int64(5); i <= n/i; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

// PrimesBetween lists the primes in [from, to].
func PrimesBetween(from, to int64) []int64 {
	var primes []int64
	for n := from; n <= to; n++ {
		if IsPrime6k(n) {
			primes = append(primes, n)
		}
	}
	return primes
}
